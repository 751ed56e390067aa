// Package cds is the support layer for the VM's class-data-sharing
// feature. It holds the process-wide dump/sharing mode flags, the trace
// helpers that feed the dump-time resolution log, and the request
// builder that turns a validated resolution batch into generated holder
// classes. All calls into the hosting VM go through small capability
// interfaces so the package can be exercised without a live VM.
package cds

// ModeProbe answers the three dump/sharing mode questions. It is
// consulted exactly once, at startup.
type ModeProbe interface {
	IsDumpingClassList() bool
	IsDumpingArchive() bool
	IsSharingEnabled() bool
}

// Runtime is the boundary to the hosting VM for everything other than
// archive generation: original command-line arguments, the dump-time
// resolution log, and archived-state restoration.
type Runtime interface {
	// VMArguments returns the original command-line arguments of the
	// current VM invocation, excluding the executable itself. May be nil.
	VMArguments() []string

	// LogResolution appends one line to the dump-time resolution log.
	LogResolution(line string)

	// RandomSeedForDumping returns a seed that is stable for a given VM
	// build and version, so archived collections sort identically
	// across dumps of the same build.
	RandomSeedForDumping() int64

	// InitializeFromArchive populates the named class's static fields
	// from archived heap data.
	InitializeFromArchive(className string) error

	// DefineArchivedModules restores the native representation of
	// archived module objects for the two built-in loaders.
	DefineArchivedModules(platformLoader, systemLoader string) error
}

// Modes is the snapshot of the VM's dump/sharing state, captured once.
type Modes struct {
	DumpingClassList bool
	DumpingArchive   bool
	SharingEnabled   bool
}

// State is the per-process CDS support state. It is constructed once at
// startup via Init; the mode flags are never re-queried afterwards.
type State struct {
	modes Modes
	rt    Runtime
}

// Init captures the dump/sharing modes from probe and binds the runtime
// capability. Call once, before any trace or restore activity.
func Init(probe ModeProbe, rt Runtime) *State {
	return &State{
		modes: Modes{
			DumpingClassList: probe.IsDumpingClassList(),
			DumpingArchive:   probe.IsDumpingArchive(),
			SharingEnabled:   probe.IsSharingEnabled(),
		},
		rt: rt,
	}
}

// Modes returns the snapshot captured at Init time.
func (s *State) Modes() Modes { return s.modes }

// IsDumpingClassList reports whether the VM is writing a class list.
func (s *State) IsDumpingClassList() bool { return s.modes.DumpingClassList }

// IsDumpingArchive reports whether the VM is writing a static or
// dynamic archive.
func (s *State) IsDumpingArchive() bool { return s.modes.DumpingArchive }

// IsSharingEnabled reports whether shared spaces are in use.
func (s *State) IsSharingEnabled() bool { return s.modes.SharingEnabled }

// TraceLambdaFormInvoker logs one resolved lambda form invoker. The
// line lands in the resolution log only while a class list is being
// dumped; otherwise it is dropped.
func (s *State) TraceLambdaFormInvoker(prefix, holder, name, methodType string) {
	if s.modes.DumpingClassList {
		s.rt.LogResolution(prefix + " " + holder + " " + name + " " + methodType)
	}
}

// TraceSpeciesType logs one resolved species type, gated the same way
// as TraceLambdaFormInvoker.
func (s *State) TraceSpeciesType(prefix, className string) {
	if s.modes.DumpingClassList {
		s.rt.LogResolution(prefix + " " + className)
	}
}

// InitializeFromArchive populates the named class's statics from the
// mapped archive. Best effort: any failure leaves the fields
// uninitialized and is never surfaced, since archived statics are a
// startup optimization, not a correctness requirement.
func (s *State) InitializeFromArchive(className string) {
	defer func() { _ = recover() }()
	_ = s.rt.InitializeFromArchive(className)
}

// DefineArchivedModules restores archived module state for the two
// built-in loaders. Errors propagate; a broken module graph is not
// recoverable.
func (s *State) DefineArchivedModules(platformLoader, systemLoader string) error {
	return s.rt.DefineArchivedModules(platformLoader, systemLoader)
}

// RandomSeedForDumping returns the build-stable dump seed.
func (s *State) RandomSeedForDumping() int64 {
	return s.rt.RandomSeedForDumping()
}
