package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/strictschema"
	"github.com/reoring/strictschema/i18n"
	"github.com/reoring/strictschema/internal/jsonvalue"
	js "github.com/reoring/strictschema/jsonschema"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "tighten":
		return tightenCmd(args[1:], stdout, stderr)
	case "validate":
		return validateCmd(args[1:], stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "strictschema CLI\n\nUsage:\n  strictschema tighten -schema schema.json [-o out.json]\n  strictschema validate -schema schema.json -instance doc.json [-no-tighten] [-ref name=file ...] [-lang en|ja] [-v]\n\nNotes:\n  - Files ending in .yaml or .yml are read as YAML.\n  - validate exits with 1 when the instance is invalid.")
}

func tightenCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tighten", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var schemaPath, out string
	fs.StringVar(&schemaPath, "schema", "", "schema file (JSON or YAML)")
	fs.StringVar(&out, "o", "", "output filename (default stdout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if schemaPath == "" {
		fs.Usage()
		return 2
	}
	s, err := readSchema(schemaPath)
	if err != nil {
		return fail(stderr, "read schema: %v", err)
	}
	b, err := jsonvalue.MarshalIndent(strictschema.Tighten(s).ToMap())
	if err != nil {
		return fail(stderr, "encode schema: %v", err)
	}
	b = append(b, '\n')
	if out == "" {
		_, _ = stdout.Write(b)
		return 0
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(stderr, "creating output dir: %v", err)
		}
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return fail(stderr, "writing output: %v", err)
	}
	return 0
}

func validateCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		schemaPath, instancePath, lang string
		noTighten, verbose             bool
		refs                           refFlags
	)
	fs.StringVar(&schemaPath, "schema", "", "schema file (JSON or YAML)")
	fs.StringVar(&instancePath, "instance", "", "instance file (JSON or YAML)")
	fs.BoolVar(&noTighten, "no-tighten", false, "validate the schema as written")
	fs.StringVar(&lang, "lang", "en", "message language for local errors (en|ja)")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	fs.Var(&refs, "ref", "extra reference schema as name=file (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if schemaPath == "" || instancePath == "" {
		fs.Usage()
		return 2
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	i18n.SetLanguage(lang)

	v := strictschema.Default()
	if len(refs) > 0 {
		reg, err := buildRegistry(refs, logger)
		if err != nil {
			return fail(stderr, "reference schemas: %v", err)
		}
		v = strictschema.New(strictschema.WithRegistry(reg))
	}
	logger.Debug("validating", "schema", schemaPath, "instance", instancePath, "tighten", !noTighten, "refs", v.Registry().Names())

	s, err := readSchema(schemaPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fail(stderr, "read schema: %v", err)
		}
		// undecodable schemas are reported the same way as other invalid schemas
		logger.Debug("schema load failed", "err", err)
		s = nil
	}
	instance, err := readInstance(instancePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fail(stderr, "read instance: %v", err)
		}
		logger.Debug("instance load failed", "err", err)
		instance = nil
	}

	res := v.Validate(instance, s, strictschema.ValidateOpt{SkipTighten: noTighten})
	if res.Valid {
		fmt.Fprintln(stdout, "valid")
		return 0
	}
	for _, it := range res.Errors {
		if it.Path != "" {
			fmt.Fprintf(stdout, "%s %s: %s\n", it.Code, it.Path, it.Message)
		} else {
			fmt.Fprintf(stdout, "%s: %s\n", it.Code, it.Message)
		}
		logger.Debug("issue", "code", it.Code, "path", it.Path, "keyword", it.Keyword)
	}
	return 1
}

// refFlags collects repeated -ref name=file flags.
type refFlags []string

func (r *refFlags) String() string { return strings.Join(*r, ",") }

func (r *refFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected name=file, got %q", v)
	}
	*r = append(*r, v)
	return nil
}

func buildRegistry(refs refFlags, logger *slog.Logger) (*strictschema.Registry, error) {
	reg := strictschema.NewRegistry()
	if err := reg.Register(strictschema.ObjectIDRef, strictschema.ObjectIDSchema()); err != nil {
		return nil, err
	}
	for _, r := range refs {
		name, path, _ := strings.Cut(r, "=")
		s, err := readSchema(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if err := reg.Register(name, s); err != nil {
			return nil, err
		}
		logger.Debug("registered reference schema", "name", name, "file", path)
	}
	reg.Seal()
	return reg, nil
}

func readSchema(path string) (*js.Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isYAML(path) {
		return js.ParseYAML(b)
	}
	return js.Parse(b)
}

func readInstance(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isYAML(path) {
		var v any
		if err := yaml.Unmarshal(b, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return jsonvalue.Decode(b)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func fail(w io.Writer, format string, a ...any) int {
	fmt.Fprintf(w, format+"\n", a...)
	return 1
}
