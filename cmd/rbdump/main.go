// Command rbdump prints the content of a RowBinaryWithNamesAndTypes result
// set, as a table or as one JSON object per row.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/elliotchance/orderedmap/v3"
	"github.com/go-faster/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/parquet-go/rowbinary"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/encoding/protojson"
	"gopkg.in/alecthomas/kingpin.v2"

	_ "time/tzdata"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "rbdump: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	file     string
	format   string
	encoding string
	limit    int
	timezone string
	verbose  bool
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := new(options)
	app := kingpin.New("rbdump", "Print the rows of a RowBinaryWithNamesAndTypes result set.")
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)
	app.HelpFlag.Short('h')
	app.Arg("file", "file to read, - for stdin").Default("-").StringVar(&opts.file)
	app.Flag("format", "output format").Short('f').Default("table").EnumVar(&opts.format, "table", "json")
	app.Flag("encoding", "content encoding of the input, guessed from the file extension when omitted").Short('e').StringVar(&opts.encoding)
	app.Flag("limit", "maximum number of rows to print, 0 for all").Short('n').Default("0").IntVar(&opts.limit)
	app.Flag("timezone", "time zone of DateTime columns without one").Default("UTC").StringVar(&opts.timezone)
	app.Flag("verbose", "log decoding progress").Short('v').BoolVar(&opts.verbose)

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}
	if opts.limit < 0 {
		return nil, errors.Errorf("invalid limit: %d", opts.limit)
	}
	if opts.encoding == "" && opts.file != "-" {
		opts.encoding = encodingOf(opts.file)
	}
	return opts, nil
}

// encodingOf returns the content encoding matching the extension of path.
func encodingOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return "gzip"
	case ".zz", ".deflate":
		return "deflate"
	case ".br":
		return "br"
	case ".zst", ".zstd":
		return "zstd"
	case ".lz4":
		return "lz4"
	case ".sz", ".snappy":
		return "snappy"
	default:
		return ""
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	codec, err := rowbinary.LookupCompression(opts.encoding)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return errors.Wrap(err, "loading time zone")
	}

	input := stdin
	if opts.file != "-" {
		f, err := os.Open(opts.file)
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}

	r := rowbinary.NewReader(input,
		rowbinary.Compression(codec),
		rowbinary.Location(loc),
		rowbinary.Logger(log),
	)
	defer r.Close()

	h, err := r.Header()
	if err != nil {
		if err == io.EOF {
			return errors.New("empty input")
		}
		return errors.Wrap(err, "reading header")
	}

	var out rowWriter
	switch opts.format {
	case "json":
		out = &jsonWriter{output: stdout, header: h}
	default:
		out = newTableWriter(stdout, h)
	}

	for opts.limit == 0 || r.Stats().Rows < int64(opts.limit) {
		row, err := r.ReadRow()
		if err != nil {
			if err == io.EOF {
				break
			}
			return errors.Wrapf(err, "reading row %d", r.Stats().Rows)
		}
		if err := out.WriteRow(row); err != nil {
			return err
		}
	}
	if err := out.Flush(); err != nil {
		return err
	}

	stats := r.Stats()
	fmt.Fprintf(stderr, "%s rows, %s read\n",
		humanize.Comma(stats.Rows),
		humanize.Bytes(uint64(stats.InputBytes)),
	)
	return nil
}

type rowWriter interface {
	WriteRow(row []any) error
	Flush() error
}

type jsonWriter struct {
	output io.Writer
	header *rowbinary.ColumnsHeader
	buffer bytes.Buffer
}

func (w *jsonWriter) WriteRow(row []any) error {
	s, err := rowbinary.RowStruct(w.header, row)
	if err != nil {
		return err
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	w.buffer.Reset()
	if err := json.Compact(&w.buffer, b); err != nil {
		return err
	}
	w.buffer.WriteByte('\n')
	_, err = w.output.Write(w.buffer.Bytes())
	return err
}

func (w *jsonWriter) Flush() error { return nil }

type tableWriter struct {
	table *tablewriter.Table
}

func newTableWriter(output io.Writer, h *rowbinary.ColumnsHeader) *tableWriter {
	table := tablewriter.NewWriter(output)
	names := make([]any, len(h.Columns))
	for i, c := range h.Columns {
		names[i] = c.Name
	}
	table.Header(names...)
	return &tableWriter{table: table}
}

func (w *tableWriter) WriteRow(row []any) error {
	cells := make([]any, len(row))
	for i, v := range row {
		cells[i] = formatValue(v)
	}
	return w.table.Append(cells...)
}

func (w *tableWriter) Flush() error { return w.table.Render() }

func formatValue(v any) string {
	var b strings.Builder
	writeValue(&b, v, false)
	return b.String()
}

func writeValue(b *strings.Builder, v any, nested bool) {
	switch v := v.(type) {
	case nil:
		b.WriteString("NULL")
	case string:
		if nested {
			b.WriteString(strconv.Quote(v))
		} else {
			b.WriteString(v)
		}
	case time.Time:
		b.WriteString(v.Format(time.RFC3339Nano))
	case []any:
		b.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, elem, true)
		}
		b.WriteByte(']')
	case *orderedmap.OrderedMap[any, any]:
		b.WriteByte('{')
		for el := v.Front(); el != nil; el = el.Next() {
			if el != v.Front() {
				b.WriteString(", ")
			}
			writeValue(b, el.Key, true)
			b.WriteString(": ")
			writeValue(b, el.Value, true)
		}
		b.WriteByte('}')
	default:
		fmt.Fprint(b, v)
	}
}
