// Package dump orchestrates shared-archive generation. A static dump
// builds a class list and re-runs the launcher in a child process with
// -Xshare:dump; a dynamic dump is a direct call into the running VM.
// Archive I/O itself lives behind the Archiver capability.
package dump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("cdshare.dump")

// ArchiveKind selects which of the two dump procedures runs.
type ArchiveKind int

const (
	// Static dumps a base archive from a fresh child VM.
	Static ArchiveKind = iota

	// Dynamic dumps a top archive from the currently running VM.
	Dynamic
)

func (k ArchiveKind) String() string {
	if k == Static {
		return "static"
	}
	return "dynamic"
}

// Archiver is the VM capability that writes archive artifacts to disk.
type Archiver interface {
	// DumpClassList writes the list of loaded classes to listFile.
	DumpClassList(listFile string) error

	// DumpDynamicArchive writes a dynamic archive layered on the base
	// archive to archiveFile.
	DumpDynamicArchive(archiveFile string) error
}

// Flags that would force a conflicting dump mode in the child process.
// Any original VM argument containing one of these is dropped from the
// rebuilt command line.
var excludedFlags = []string{
	"-XX:DumpLoadedClassList=",
	"-XX:+DumpSharedSpaces",
	"-XX:+DynamicDumpSharedSpaces",
	"-XX:+RecordDynamicDumpInfo",
}

func containsExcludedFlags(arg string) bool {
	for _, f := range excludedFlags {
		if strings.Contains(arg, f) {
			return true
		}
	}
	return false
}

// Orchestrator runs one-shot archive dumps. It is synchronous and keeps
// no state between calls; only one dump is expected to be in flight at
// a time, driven by the caller.
type Orchestrator struct {
	// Archiver is required.
	Archiver Archiver

	// VMArgs is the original command-line argument list of the current
	// VM invocation. It is replayed, minus excluded dump flags, in the
	// static child process. May be nil.
	VMArgs []string

	// Config carries the debug switch and path overrides.
	Config Config

	// History, when non-nil, records every dump attempt.
	History *History

	// Out receives the child's output lines in debug mode. Defaults to
	// stdout.
	Out io.Writer
}

// New returns an Orchestrator for the given archiver and config.
func New(archiver Archiver, cfg Config) *Orchestrator {
	return &Orchestrator{Archiver: archiver, Config: cfg}
}

// DefaultArchiveName derives the archive file name used when the caller
// supplies none: java_pid<pid>_static.jsa or java_pid<pid>_dynamic.jsa.
func DefaultArchiveName(kind ArchiveKind) string {
	return fmt.Sprintf("java_pid%d_%s.jsa", os.Getpid(), kind)
}

// Dump writes a shared archive of the given kind. fileName is used
// verbatim when non-empty; otherwise a pid-based default is derived
// (and placed under Config.ArchiveDir if one is set). The archive lands
// on disk as a side effect; nothing is returned beyond success or
// failure.
func (o *Orchestrator) Dump(kind ArchiveKind, fileName string) error {
	archiveFile := fileName
	if archiveFile == "" {
		archiveFile = DefaultArchiveName(kind)
		if o.Config.ArchiveDir != "" {
			archiveFile = filepath.Join(o.Config.ArchiveDir, archiveFile)
		}
	}
	log.Infof("%s dump to file %s", kind, archiveFile)

	var err error
	switch kind {
	case Static:
		err = o.dumpStatic(archiveFile)
	case Dynamic:
		err = o.Archiver.DumpDynamicArchive(archiveFile)
	default:
		err = fmt.Errorf("dump: unknown archive kind %d", kind)
	}

	o.record(kind, archiveFile, err)
	return err
}

// dumpStatic performs the two sub-steps of a static dump: class-list
// generation, then archive generation in a child process.
func (o *Orchestrator) dumpStatic(archiveFile string) error {
	listFile := archiveFile + ".classlist"
	if err := o.Archiver.DumpClassList(listFile); err != nil {
		return fmt.Errorf("dump class list %s: %w", listFile, err)
	}

	args := staticDumpArgs(listFile, archiveFile, o.VMArgs)
	cmd := exec.Command(o.launcher(), args...)

	// The child gets an empty environment on purpose. Inherited
	// variables (JAVA_TOOL_OPTIONS and friends) can re-enable dump
	// flags and make the fresh dump fail.
	cmd.Env = []string{}

	debug := o.Config.DebugEnabled()

	var stdout, stderr io.ReadCloser
	var err error
	if debug {
		fmt.Fprintf(o.out(), "static dump cmd: %s %s\n", cmd.Path, strings.Join(args, " "))
		if stdout, err = cmd.StdoutPipe(); err != nil {
			return fmt.Errorf("dump: stdout pipe: %w", err)
		}
		if stderr, err = cmd.StderrPipe(); err != nil {
			return fmt.Errorf("dump: stderr pipe: %w", err)
		}
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("dump: start %s: %w", cmd.Path, err)
	}

	if debug {
		// Stdout is drained to EOF before stderr. A child that fills
		// its stderr pipe buffer while stdout is still open will block
		// until the stdout drain finishes.
		fmt.Fprintf(o.out(), "dump process %d stdout:\n", cmd.Process.Pid)
		drainLines(stdout, o.out())
		fmt.Fprintf(o.out(), "dump process %d stderr:\n", cmd.Process.Pid)
		drainLines(stderr, o.out())
	}

	// The child's exit status is not part of the contract: a dump that
	// failed inside the child reports through -Xlog:cds output, not
	// through this call. Only OS-level wait failures surface.
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("dump: wait for %s: %w", cmd.Path, err)
		}
	}
	return nil
}

// launcher returns the java launcher path, derived from the configured
// or environment-provided installation directory.
func (o *Orchestrator) launcher() string {
	home := o.Config.JavaHome
	if home == "" {
		home = os.Getenv("JAVA_HOME")
	}
	return filepath.Join(home, "bin", "java")
}

// staticDumpArgs builds the child argument list: the fixed dump flags
// followed by the original VM arguments, minus any that would force a
// conflicting dump mode.
func staticDumpArgs(listFile, archiveFile string, vmArgs []string) []string {
	args := []string{
		"-Xlog:cds",
		"-Xshare:dump",
		"-XX:SharedClassListFile=" + listFile,
		"-XX:SharedArchiveFile=" + archiveFile,
	}
	for _, arg := range vmArgs {
		if arg != "" && !containsExcludedFlags(arg) {
			args = append(args, arg)
		}
	}
	return args
}

// drainLines copies r to w line by line until EOF.
func drainLines(r io.Reader, w io.Writer) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fmt.Fprintln(w, sc.Text())
	}
}

func (o *Orchestrator) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

// record notes the attempt in the history store, when one is wired.
func (o *Orchestrator) record(kind ArchiveKind, archiveFile string, dumpErr error) {
	if o.History == nil {
		return
	}
	if err := o.History.Record(kind, archiveFile, dumpErr); err != nil {
		log.Warningf("cannot record dump history: %v", err)
	}
}
