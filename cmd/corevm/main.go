// Command corevm is a tiny host shell around the executor: no
// source-language parser exists (base spec Non-goals), so every
// runnable callable here is one of the demo Functions in demo.go, built
// directly out of basic blocks. Grounded in shape on the teacher's
// cmd/smog CLI (subcommand dispatch, run/disassemble verbs), rebuilt on
// urfave/cli/v2 for flag parsing and usage text.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/kristofer/corevm/internal/config"
	"github.com/kristofer/corevm/internal/heap"
	"github.com/kristofer/corevm/internal/hostlib"
	"github.com/kristofer/corevm/internal/opcode"
	"github.com/kristofer/corevm/internal/optimizer"
	"github.com/kristofer/corevm/internal/vm"
)

func main() {
	app := &cli.App{
		Name:  "corevm",
		Usage: "register-less stack VM with a tracing GC and an offline optimizer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a YAML tunables file"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug-level executor logging"},
		},
		Commands: []*cli.Command{
			runCommand(),
			gcCommand(),
			disasmCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "corevm:", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	cfg := config.Default()
	cfg.Debug = c.Bool("debug")
	return cfg, nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("instance", cfg.InstanceID.String()).Logger()
}

// buildExecutor wires a pool, registers every demo static (and the
// hostlib natives), and returns an Executor ready for RunCallable.
func buildExecutor(cfg config.Config, log zerolog.Logger) (*vm.Executor, *heap.Pool, error) {
	pool := heap.NewPool(cfg.GCThreshold)
	pool.Log = log
	opt := optimizer.New(pool, log)

	if err := registerDemoPool(pool, opt.Optimize); err != nil {
		return nil, nil, err
	}
	if err := hostlib.RegisterAll(pool); err != nil {
		return nil, nil, err
	}

	ex := vm.New(pool, cfg.StackDepthLimit, log)
	ex.SetDebug(cfg.Debug)
	return ex, pool, nil
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "execute a demo callable by name and print its result",
		ArgsUsage: "<name>",
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return cli.Exit("run requires a callable name (sum_to_limit, fib_30, const_pi)", 1)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			ex, pool, err := buildExecutor(cfg, log)
			if err != nil {
				return err
			}
			result, err := ex.RunCallable(name)
			if err != nil {
				return err
			}
			fmt.Println(heap.ToString(pool, result))
			return nil
		},
	}
}

func gcCommand() *cli.Command {
	return &cli.Command{
		Name:  "gc",
		Usage: "build the demo pool, force a collection, and print pool stats",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			ex, pool, err := buildExecutor(cfg, log)
			if err != nil {
				return err
			}
			before := pool.LiveHandles()
			ex.GC()
			after := pool.LiveHandles()
			fmt.Println(config.DebugTrace(cfg.InstanceID, after, pool.AllocCount(), cfg.GCThreshold))
			fmt.Printf("live objects: %d -> %d\n", before, after)
			return nil
		},
	}
}

func disasmCommand() *cli.Command {
	return &cli.Command{
		Name:      "disasm",
		Usage:     "pretty-print a demo callable's basic blocks",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "optimized", Usage: "run the optimizer before disassembling"},
		},
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return cli.Exit("disasm requires a callable name", 1)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			pool := heap.NewPool(cfg.GCThreshold)
			opt := optimizer.New(pool, log)

			var fn *opcode.Function
			switch name {
			case "sum_to_limit":
				fn, err = sumToLimitFunction(100000)
			case "fib":
				fn, err = fibFunction()
			case "fib_30":
				fn, err = fibCallFunction(30)
			case "const_pi":
				fn, err = constPiFunction()
			default:
				return cli.Exit("unknown callable: "+name, 1)
			}
			if err != nil {
				return err
			}

			if c.Bool("optimized") {
				if err := pool.SetStaticObject("pi", heap.Float(3.14)); err != nil {
					return err
				}
				fn, err = opt.Optimize(fn)
				if err != nil {
					return err
				}
			}
			fmt.Println(opcode.Disassemble(fn))
			return nil
		},
	}
}
