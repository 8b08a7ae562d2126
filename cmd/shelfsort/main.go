package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"shelfsort/internal/config"
	apperrors "shelfsort/internal/errors"
	"shelfsort/internal/logger"
	"shelfsort/internal/pipeline"
	"shelfsort/internal/storage"
)

func main() {
	must(run(os.Args[1:], os.Stdout))
}

// run executes one command. Errors are returned, never exited on, so
// deferred closes still happen.
func run(args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return apperrors.Internal("load config", err)
	}

	if len(args) < 1 {
		usage(stdout)
		return apperrors.InvalidConfig(apperrors.New("missing command"))
	}

	cmd := args[0]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	idStrategy := fs.String("ids", cfg.IDStrategy, "uuid|nanoid|hash|sequence")
	strict := fs.Bool("strict", cfg.Strict, "report records that fail strict checks")

	switch cmd {
	case "clean":
		input := fs.String("input", "", "input file (.json, .xlsx, .html)")
		inType := fs.String("type", "", "json|xlsx|html (default: from extension)")
		output := fs.String("output", cfg.OutputPath(cfg.CleanedFileName), "output json path")
		if err := fs.Parse(args[1:]); err != nil {
			return apperrors.InvalidConfig(err)
		}
		cfg.IDStrategy, cfg.Strict = *idStrategy, *strict
		if err := validate(cfg, "--input", *input); err != nil {
			return err
		}

		format, err := pipeline.DetectFormat(*input, *inType)
		if err != nil {
			return err
		}
		res, err := pipeline.NewService(cfg, newLogger(cfg), nil).Clean(*input, format, *output)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "cleaned %d records -> %s\n", len(res.Books), *output)
	case "group":
		input := fs.String("input", "", "cleaned books json")
		fromDB := fs.Bool("from-db", false, "group the books stored in the database instead of --input")
		output := fs.String("output", cfg.OutputPath(cfg.GroupedFileName), "output json path")
		if err := fs.Parse(args[1:]); err != nil {
			return apperrors.InvalidConfig(err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log := newLogger(cfg)
		var report pipeline.Report
		if *fromDB {
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			report, err = pipeline.NewService(cfg, log, db).GroupFromDB(*output)
			if err != nil {
				return err
			}
		} else {
			if err := cfg.Require("--input", *input); err != nil {
				return err
			}
			report, err = pipeline.NewService(cfg, log, nil).GroupFile(*input, *output)
			if err != nil {
				return err
			}
		}
		st := report.Stats()
		fmt.Fprintf(stdout, "grouped %d books into %d locations -> %s\n", st.Books, st.Locations, *output)
	case "run":
		input := fs.String("input", "", "input file (.json, .xlsx, .html)")
		inType := fs.String("type", "", "json|xlsx|html (default: from extension)")
		outDir := fs.String("out-dir", cfg.OutputDir, "output directory")
		withDB := fs.Bool("db", false, "also load cleaned books into the database")
		if err := fs.Parse(args[1:]); err != nil {
			return apperrors.InvalidConfig(err)
		}
		cfg.IDStrategy, cfg.Strict, cfg.OutputDir = *idStrategy, *strict, *outDir
		if err := validate(cfg, "--input", *input); err != nil {
			return err
		}

		format, err := pipeline.DetectFormat(*input, *inType)
		if err != nil {
			return err
		}
		var db *storage.DB
		if *withDB {
			db, err = openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
		}
		svc := pipeline.NewService(cfg, newLogger(cfg), db)
		res, err := svc.Run(*input, format, cfg.OutputPath(cfg.CleanedFileName), cfg.OutputPath(cfg.GroupedFileName))
		if err != nil {
			return err
		}
		st := res.Report.Stats()
		fmt.Fprintf(stdout, "run done records=%d locations=%d output=%s\n", len(res.Clean.Books), st.Locations, cfg.OutputDir)
	case "export:xlsx":
		input := fs.String("input", "", "cleaned books json")
		output := fs.String("output", "", "output xlsx path")
		if err := fs.Parse(args[1:]); err != nil {
			return apperrors.InvalidConfig(err)
		}
		if strings.TrimSpace(*input) == "" || strings.TrimSpace(*output) == "" {
			return apperrors.InvalidConfig(apperrors.New("--input and --output are required"))
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		report, err := pipeline.NewService(cfg, newLogger(cfg), nil).ExportXLSX(*input, *output)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "exported %d locations to %s\n", len(report), *output)
	case "db:load":
		input := fs.String("input", "", "cleaned books json")
		if err := fs.Parse(args[1:]); err != nil {
			return apperrors.InvalidConfig(err)
		}
		if err := validate(cfg, "--input", *input); err != nil {
			return err
		}

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		n, err := pipeline.NewService(cfg, newLogger(cfg), db).LoadFile(*input)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "loaded %d books into %s\n", n, cfg.DBPath)
	default:
		usage(stdout)
		return apperrors.InvalidConfig(fmt.Errorf("unknown command %q", cmd))
	}
	return nil
}

func validate(cfg config.Config, name, value string) error {
	if err := cfg.Require(name, value); err != nil {
		return err
	}
	return cfg.Validate()
}

func newLogger(cfg config.Config) *logger.Logger {
	return logger.New(logger.Config{
		Format:      cfg.LogFormat,
		Environment: cfg.Environment,
		Level:       logger.ParseLevel(cfg.LogLevel),
		NoColor:     cfg.NoColor,
	})
}

func openDB(cfg config.Config) (*storage.DB, error) {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, apperrors.Internal("open database "+cfg.DBPath, err)
	}
	return db, nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: shelfsort <command>")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  clean --input=books.json [--type=json|xlsx|html] [--output=...] [--ids=uuid|nanoid|hash|sequence] [--strict]")
	fmt.Fprintln(w, "  group --input=books_cleaned.json | --from-db [--output=...]")
	fmt.Fprintln(w, "  run --input=books.json [--type=...] [--out-dir=./out] [--db] [--ids=...] [--strict]")
	fmt.Fprintln(w, "  export:xlsx --input=books_cleaned.json --output=./out/shelves.xlsx")
	fmt.Fprintln(w, "  db:load --input=books_cleaned.json")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(apperrors.CodeOf(err).ExitCode())
}
