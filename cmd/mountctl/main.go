// mountctl is an interactive control shell for a telescope mount. It talks
// to real hardware through the NexStar driver, or to the simulated mount
// with -driver MOCK.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	"github.com/mlsorensen/gomount"
	"github.com/mlsorensen/gomount/pkg/mounts/nexstar"

	_ "github.com/mlsorensen/gomount/pkg/mounts/all"
)

func initLogger(verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", "mountctl").Logger()
	if verbose {
		return logger.Level(zerolog.DebugLevel)
	}
	return logger.Level(zerolog.InfoLevel)
}

type cliCommand struct {
	Name        string
	Usage       string
	Description string
	MinArgs     int
	MaxArgs     int
	Handler     func(m gomount.Mount, args []string) error
}

var cliCommands = map[string]cliCommand{}

func register(c cliCommand) {
	cliCommands[c.Name] = c
}

func main() {
	configPath := flag.String("config", "", "path to a mountctl.toml config file")
	portPath := flag.String("port", "", "serial port path (overrides config and discovery)")
	driver := flag.String("driver", "", "mount driver name (default NEXSTAR; MOCK for the simulator)")
	useMock := flag.Bool("mock", false, "shorthand for -driver MOCK")
	verbose := flag.Bool("v", false, "log wire-level serial traffic")
	flag.Parse()

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	if *portPath != "" {
		cfg.Port = *portPath
	}
	if *driver != "" {
		cfg.Driver = strings.ToUpper(*driver)
	}
	if *useMock {
		cfg.Driver = "MOCK"
	}
	if *verbose {
		cfg.Verbose = true
	}

	logger := initLogger(cfg.Verbose)

	mount, err := openMount(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not connect to mount")
	}
	defer mount.Close()

	// ---- CLI args or interactive ----
	if flag.NArg() > 0 {
		runCommand(mount, flag.Arg(0), flag.Args()[1:])
		return
	}

	runShell(mount)
}

// openMount connects using the configured driver. The NexStar driver is
// dialed directly so wire tracing reaches it; everything else goes through
// the registry.
func openMount(cfg config, logger zerolog.Logger) (gomount.Mount, error) {
	if cfg.Driver != "NEXSTAR" {
		return gomount.New(cfg.Driver, &gomount.FoundPort{Path: cfg.Port})
	}

	path := cfg.Port
	if path == "" {
		ports, err := gomount.Scan()
		if err != nil {
			return nil, err
		}
		if len(ports) == 0 {
			return nil, fmt.Errorf("no mount serial bridge found; pass -port explicitly")
		}
		path = ports[0].Path
		logger.Info().Str("port", path).Msg("discovered mount serial bridge")
	}

	return nexstar.ConnectWithLogger(path, logger)
}

func runShell(mount gomount.Mount) {
	shell := liner.NewLiner()
	defer shell.Close()

	shell.SetCtrlCAborts(true)
	shell.SetCompleter(func(line string) (c []string) {
		for name := range cliCommands {
			if strings.HasPrefix(name, strings.ToLower(line)) {
				c = append(c, name)
			}
		}
		return
	})

	const historyFile = ".mountctl_history"
	if f, err := os.Open(historyFile); err == nil {
		shell.ReadHistory(f)
		f.Close()
	}

	fmt.Println("Interactive mode. Type \"help\" for commands, Ctrl-D to quit.")
	for {
		input, err := shell.Prompt("> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Println()
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		shell.AppendHistory(input)

		if input == "help" {
			printHelp()
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}

		tokens := strings.Fields(input)
		runCommand(mount, tokens[0], tokens[1:])
	}

	if f, err := os.Create(historyFile); err == nil {
		shell.WriteHistory(f)
		f.Close()
	}
}

func printHelp() {
	names := make([]string, 0, len(cliCommands))
	for name := range cliCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := cliCommands[name]
		fmt.Printf("  %-28s %s\n", c.Usage, c.Description)
	}
}

func runCommand(mount gomount.Mount, name string, args []string) {
	cmd, ok := cliCommands[strings.ToLower(name)]
	if !ok {
		fmt.Printf("unknown command %q\n", name)
		return
	}
	if len(args) < cmd.MinArgs || len(args) > cmd.MaxArgs {
		fmt.Printf("usage: %s\n", cmd.Usage)
		return
	}
	if err := cmd.Handler(mount, args); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func parseAxis(s string) (gomount.SlewAxis, error) {
	switch strings.ToLower(s) {
	case "ra", "az", "raaz":
		return gomount.AxisRAAz, nil
	case "dec", "el", "decel":
		return gomount.AxisDecEl, nil
	default:
		return 0, fmt.Errorf("unknown axis %q (want ra or dec)", s)
	}
}

func parseDir(s string) (gomount.SlewDir, error) {
	switch s {
	case "+", "pos", "positive":
		return gomount.DirPositive, nil
	case "-", "neg", "negative":
		return gomount.DirNegative, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (want + or -)", s)
	}
}

func parseTrackingMode(s string) (gomount.TrackingMode, error) {
	switch strings.ToLower(s) {
	case "off":
		return gomount.TrackingOff, nil
	case "azel", "altaz":
		return gomount.TrackingAzEl, nil
	case "eqnorth", "north":
		return gomount.TrackingEQNorth, nil
	case "eqsouth", "south":
		return gomount.TrackingEQSouth, nil
	default:
		return 0, fmt.Errorf("unknown tracking mode %q (want off, azel, eqnorth or eqsouth)", s)
	}
}

func parseDegrees(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad degree value %q", s)
	}
	return v, nil
}

func init() {
	register(cliCommand{
		Name: "pos", Usage: "pos", Description: "read RA/Dec position",
		Handler: func(m gomount.Mount, _ []string) error {
			pos, err := m.GetPositionRADec()
			if err != nil {
				return err
			}
			fmt.Println(pos)
			return nil
		},
	})

	register(cliCommand{
		Name: "posaz", Usage: "posaz", Description: "read Az/El position",
		Handler: func(m gomount.Mount, _ []string) error {
			pos, err := m.GetPositionAzEl()
			if err != nil {
				return err
			}
			fmt.Println(pos)
			return nil
		},
	})

	register(cliCommand{
		Name: "goto", Usage: "goto RA DEC", Description: "slew to RA/Dec in degrees",
		MinArgs: 2, MaxArgs: 2,
		Handler: func(m gomount.Mount, args []string) error {
			ra, err := parseDegrees(args[0])
			if err != nil {
				return err
			}
			dec, err := parseDegrees(args[1])
			if err != nil {
				return err
			}
			return m.GotoRADec(gomount.RADec{RA: ra, Dec: dec})
		},
	})

	register(cliCommand{
		Name: "gotoaz", Usage: "gotoaz AZ EL", Description: "slew to Az/El in degrees",
		MinArgs: 2, MaxArgs: 2,
		Handler: func(m gomount.Mount, args []string) error {
			az, err := parseDegrees(args[0])
			if err != nil {
				return err
			}
			el, err := parseDegrees(args[1])
			if err != nil {
				return err
			}
			return m.GotoAzEl(gomount.AzEl{Az: az, El: el})
		},
	})

	register(cliCommand{
		Name: "sync", Usage: "sync RA DEC", Description: "recalibrate pointing to RA/Dec",
		MinArgs: 2, MaxArgs: 2,
		Handler: func(m gomount.Mount, args []string) error {
			ra, err := parseDegrees(args[0])
			if err != nil {
				return err
			}
			dec, err := parseDegrees(args[1])
			if err != nil {
				return err
			}
			return m.Sync(gomount.RADec{RA: ra, Dec: dec})
		},
	})

	register(cliCommand{
		Name: "track", Usage: "track [off|azel|eqnorth|eqsouth]", Description: "get or set tracking mode",
		MaxArgs: 1,
		Handler: func(m gomount.Mount, args []string) error {
			if len(args) == 0 {
				mode, err := m.GetTrackingMode()
				if err != nil {
					return err
				}
				fmt.Println(mode)
				return nil
			}
			mode, err := parseTrackingMode(args[0])
			if err != nil {
				return err
			}
			return m.SetTrackingMode(mode)
		},
	})

	register(cliCommand{
		Name: "slew", Usage: "slew AXIS DIR RATE", Description: "variable slew, arcsec/s (rate 0 stops)",
		MinArgs: 3, MaxArgs: 3,
		Handler: func(m gomount.Mount, args []string) error {
			axis, err := parseAxis(args[0])
			if err != nil {
				return err
			}
			dir, err := parseDir(args[1])
			if err != nil {
				return err
			}
			rate, err := strconv.ParseUint(args[2], 10, 16)
			if err != nil {
				return fmt.Errorf("bad rate %q", args[2])
			}
			return m.SlewVariable(axis, dir, uint16(rate))
		},
	})

	register(cliCommand{
		Name: "slewfixed", Usage: "slewfixed AXIS DIR RATE", Description: "fixed slew at speed 0-9",
		MinArgs: 3, MaxArgs: 3,
		Handler: func(m gomount.Mount, args []string) error {
			axis, err := parseAxis(args[0])
			if err != nil {
				return err
			}
			dir, err := parseDir(args[1])
			if err != nil {
				return err
			}
			rate, err := strconv.ParseUint(args[2], 10, 8)
			if err != nil || rate > 9 {
				return fmt.Errorf("bad fixed rate %q (want 0-9)", args[2])
			}
			return m.SlewFixed(axis, dir, gomount.SlewRate(rate))
		},
	})

	register(cliCommand{
		Name: "stop", Usage: "stop [AXIS]", Description: "stop slewing (both axes by default)",
		MaxArgs: 1,
		Handler: func(m gomount.Mount, args []string) error {
			if len(args) == 1 {
				axis, err := parseAxis(args[0])
				if err != nil {
					return err
				}
				return m.StopSlew(axis)
			}
			if err := m.StopSlew(gomount.AxisRAAz); err != nil {
				return err
			}
			return m.StopSlew(gomount.AxisDecEl)
		},
	})

	register(cliCommand{
		Name: "moving", Usage: "moving", Description: "report whether a goto is in progress",
		Handler: func(m gomount.Mount, _ []string) error {
			moving, err := m.GotoInProgress()
			if err != nil {
				return err
			}
			fmt.Println(moving)
			return nil
		},
	})

	register(cliCommand{
		Name: "cancel", Usage: "cancel", Description: "cancel the goto in progress",
		Handler: func(m gomount.Mount, _ []string) error {
			return m.CancelGoto()
		},
	})

	register(cliCommand{
		Name: "aligned", Usage: "aligned", Description: "report alignment status",
		Handler: func(m gomount.Mount, _ []string) error {
			aligned, err := m.IsAligned()
			if err != nil {
				return err
			}
			fmt.Println(aligned)
			return nil
		},
	})

	register(cliCommand{
		Name: "time", Usage: "time", Description: "read the hand controller clock",
		Handler: func(m gomount.Mount, _ []string) error {
			t, err := m.GetTime()
			if err != nil {
				return err
			}
			fmt.Println(t.Format(time.RFC3339))
			return nil
		},
	})

	register(cliCommand{
		Name: "settime", Usage: "settime", Description: "set the hand controller clock to system time",
		Handler: func(m gomount.Mount, _ []string) error {
			return m.SetTime(time.Now())
		},
	})

	register(cliCommand{
		Name: "version", Usage: "version", Description: "hand controller firmware version",
		Handler: func(m gomount.Mount, _ []string) error {
			v, err := m.GetVersion()
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		},
	})

	register(cliCommand{
		Name: "devversion", Usage: "devversion [ra|dec|rtc]", Description: "sub-device firmware version",
		MinArgs: 1, MaxArgs: 1,
		Handler: func(m gomount.Mount, args []string) error {
			var dev gomount.SubDevice
			switch strings.ToLower(args[0]) {
			case "ra", "az":
				dev = gomount.SubDeviceAzRaMotor
			case "dec", "el":
				dev = gomount.SubDeviceDecElMotor
			case "rtc":
				dev = gomount.SubDeviceRtc
			default:
				return fmt.Errorf("unknown sub-device %q", args[0])
			}
			v, err := m.GetDeviceVersion(dev)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", dev, v)
			return nil
		},
	})

	register(cliCommand{
		Name: "model", Usage: "model", Description: "identify the mount hardware",
		Handler: func(m gomount.Mount, _ []string) error {
			model, err := m.GetModel()
			if err != nil {
				return err
			}
			fmt.Println(model)
			return nil
		},
	})

	register(cliCommand{
		Name: "echo", Usage: "echo", Description: "verify the serial link",
		Handler: func(m gomount.Mount, _ []string) error {
			if err := m.Echo('x'); err != nil {
				return err
			}
			fmt.Println("link ok")
			return nil
		},
	})

	register(cliCommand{
		Name: "gps", Usage: "gps", Description: "GPS link status, location and firmware",
		Handler: func(m gomount.Mount, _ []string) error {
			gps, err := m.Gps()
			if err != nil {
				return err
			}

			linked, err := gps.IsLinked()
			if err != nil {
				return err
			}
			fmt.Printf("linked: %v\n", linked)

			if v, err := gps.GetDeviceVersion(); err == nil {
				fmt.Printf("firmware: %s\n", v)
			}

			if !linked {
				return nil
			}
			lat, lon, err := gps.GetLocation()
			if err != nil {
				return err
			}
			fmt.Printf("location: %.4f°, %.4f°\n", lat, lon)
			return nil
		},
	})

	register(cliCommand{
		Name: "rtc", Usage: "rtc", Description: "read the real-time clock",
		Handler: func(m gomount.Mount, _ []string) error {
			rtc, err := m.Rtc()
			if err != nil {
				return err
			}
			t, err := rtc.GetDateTime()
			if err != nil {
				return err
			}
			fmt.Println(t.Format(time.RFC3339))
			return nil
		},
	})

	register(cliCommand{
		Name: "rtcsync", Usage: "rtcsync", Description: "set the real-time clock to system time",
		Handler: func(m gomount.Mount, _ []string) error {
			rtc, err := m.Rtc()
			if err != nil {
				return err
			}
			return rtc.SetDateTime(time.Now())
		},
	})
}
