// cdsctl - diagnostic driver for class-data-sharing archives: checks
// resolution logs and runs static archive dumps against a JDK install.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/cdshare/dump"
	"github.com/chazu/cdshare/resolve"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	check := flag.String("check", "", "Validate a resolution log file and exit")
	static := flag.Bool("static", false, "Dump a static archive")
	dynamic := flag.Bool("dynamic", false, "Dump a dynamic archive (requires a running VM)")
	archive := flag.String("f", "", "Archive file name (default: java_pid<pid>_<kind>.jsa)")
	classList := flag.String("classlist", "", "Existing class list file to dump from (static only)")
	vmArgs := flag.String("vmargs", "", "Extra VM arguments to pass to the dump process")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cdsctl [options]\n\n")
		fmt.Fprintf(os.Stderr, "Validates resolution logs and drives shared-archive dumps.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  cdsctl -check resolve.log                # Validate a resolution log\n")
		fmt.Fprintf(os.Stderr, "  cdsctl -static -classlist app.classlist  # Dump a static archive\n")
		fmt.Fprintf(os.Stderr, "  cdsctl -static -f base.jsa -classlist app.classlist -vmargs \"-Xmx512m\"\n")
		fmt.Fprintf(os.Stderr, "\nConfiguration is read from %s in the current directory.\n", dump.ConfigFileName)
	}
	flag.Parse()

	if *verbose {
		commonlog.Configure(1, nil)
	}

	if *check != "" {
		if err := checkResolutionLog(*check, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *static == *dynamic {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := dump.LoadConfigOrDefault(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	o := dump.New(&fileArchiver{classListSource: *classList}, *cfg)
	if *vmArgs != "" {
		o.VMArgs = strings.Fields(*vmArgs)
	}
	if cfg.HistoryDB != "" {
		h, err := dump.OpenHistory(cfg.HistoryDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: dump history unavailable: %v\n", err)
		} else {
			defer h.Close()
			o.History = h
		}
	}

	kind := dump.Static
	if *dynamic {
		kind = dump.Dynamic
	}
	if err := o.Dump(kind, *archive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// checkResolutionLog validates every line of a resolution log file.
func checkResolutionLog(path string, verbose bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var lines []string
	for _, s := range strings.Split(string(data), "\n") {
		if s != "" {
			lines = append(lines, s)
		}
	}

	if err := resolve.ValidateLines(lines); err != nil {
		return err
	}
	if verbose {
		for _, s := range lines {
			ln, _ := resolve.ParseLine(s)
			switch ln.Kind {
			case resolve.KindLambdaForm:
				fmt.Printf("lambda form  %s %s %s\n", ln.Holder, ln.MethodName, ln.MethodType)
			case resolve.KindSpecies:
				fmt.Printf("species      %s\n", ln.Species)
			}
		}
	}
	fmt.Printf("%s: %d lines OK\n", path, len(lines))
	return nil
}

// fileArchiver backs the class-list capability with an existing file;
// cdsctl has no live VM to ask for loaded classes or a dynamic dump.
type fileArchiver struct {
	classListSource string
}

func (a *fileArchiver) DumpClassList(listFile string) error {
	if a.classListSource == "" {
		return fmt.Errorf("no class list source; use -classlist")
	}
	data, err := os.ReadFile(a.classListSource)
	if err != nil {
		return fmt.Errorf("read class list %s: %w", a.classListSource, err)
	}
	return os.WriteFile(listFile, data, 0644)
}

func (a *fileArchiver) DumpDynamicArchive(archiveFile string) error {
	return fmt.Errorf("dynamic dump requires a running VM")
}
