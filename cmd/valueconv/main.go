// Command valueconv re-encodes a document from one format to another while
// keeping map order and value kinds.
//
//	valueconv --from json --to yaml --in doc.json
package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli"

	"github.com/valuekit/value-go"
	"github.com/valuekit/value-go/encoding/cbor"
	"github.com/valuekit/value-go/encoding/json"
	"github.com/valuekit/value-go/encoding/msgpack"
	"github.com/valuekit/value-go/encoding/yaml"
	"github.com/valuekit/value-go/logging"
)

var (
	fromFlag = cli.StringFlag{
		Name:  "from, f",
		Usage: "input format, one of " + strings.Join(formats(), ", "),
		Value: "json",
	}
	toFlag = cli.StringFlag{
		Name:  "to, t",
		Usage: "output format, one of " + strings.Join(formats(), ", "),
		Value: "json",
	}
	inFlag = cli.StringFlag{
		Name:  "in, i",
		Usage: "input file, stdin when empty",
	}
	outFlag = cli.StringFlag{
		Name:  "out, o",
		Usage: "output file, stdout when empty",
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose, v",
		Usage: "log conversion details to stderr",
	}
)

func formats() []string {
	return []string{"cbor", "json", "msgpack", "yaml"}
}

func codecFor(name string, logger logging.Logger) (value.Codec, error) {
	switch strings.ToLower(name) {
	case "json":
		return &json.Codec{Logger: logger}, nil
	case "cbor":
		return &cbor.Codec{}, nil
	case "msgpack":
		return &msgpack.Codec{}, nil
	case "yaml", "yml":
		return &yaml.Codec{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q, expected one of %v", name, formats())
	}
}

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "valueconv"
	app.Usage = "convert documents between " + strings.Join(formats(), ", ")
	app.Version = "v0.1.0"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{fromFlag, toFlag, inFlag, outFlag, verboseFlag}

	app.Action = func(c *cli.Context) error {
		var logger logging.Logger = logging.Noop{}
		if c.Bool(verboseFlag.Name) {
			logger = logging.Filter{
				Logger: logging.NewStandardLogger(stderr),
				Allow:  []logging.Classification{logging.Warn, logging.Debug},
			}
		}

		return convert(c, stdin, stdout, logger)
	}

	return app
}

func convert(c *cli.Context, stdin io.Reader, stdout io.Writer, logger logging.Logger) error {
	from, err := codecFor(c.String("from"), logger)
	if err != nil {
		return err
	}
	to, err := codecFor(c.String("to"), logger)
	if err != nil {
		return err
	}

	r := stdin
	if name := c.String("in"); name != "" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	p, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	v, err := value.Unmarshal(from, p, func(o *value.DecodeOptions) {
		o.Logger = logger
	})
	if err != nil {
		return err
	}
	logger.Logf(logging.Debug, "decoded %v from %d bytes of %s", value.KindOf(v), len(p), from.Name())

	out, err := value.Marshal(to, v)
	if err != nil {
		return err
	}
	if !slices.Contains([]string{"cbor", "msgpack"}, to.Name()) && !strings.HasSuffix(string(out), "\n") {
		out = append(out, '\n')
	}

	if name := c.String("out"); name != "" {
		return os.WriteFile(name, out, 0o644)
	}
	_, err = stdout.Write(out)
	return err
}
