package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/indigo-web/h1client/client"
	"github.com/indigo-web/h1client/config"
	"github.com/indigo-web/h1client/http/method"
	json "github.com/json-iterator/go"
)

type headerFlags []string

func (h *headerFlags) String() string {
	return strings.Join(*h, ", ")
}

func (h *headerFlags) Set(value string) error {
	if !strings.Contains(value, ":") {
		return fmt.Errorf("header %q must be in form of Name: Value", value)
	}

	*h = append(*h, value)
	return nil
}

type options struct {
	addr, path, method string
	headers            headerFlags
	data, output       string
	json, quiet        bool
	timeout            time.Duration
}

func parseFlags(args []string) (opts options, err error) {
	set := flag.NewFlagSet("httpc", flag.ContinueOnError)
	set.StringVar(&opts.addr, "addr", "localhost:80", "host:port to connect to")
	set.StringVar(&opts.path, "path", "/", "request target")
	set.StringVar(&opts.method, "method", "GET", "request method")
	set.Var(&opts.headers, "H", "request header, may be repeated")
	set.StringVar(&opts.data, "data", "", "request body. If starts with @, the rest is a file name, which is sent chunked")
	set.StringVar(&opts.output, "o", "", "write the body into the file instead of stdout")
	set.BoolVar(&opts.json, "json", false, "pretty-print the body as JSON")
	set.BoolVar(&opts.quiet, "q", false, "don't print the status line and headers")
	set.DurationVar(&opts.timeout, "timeout", 0, "read and write timeout, default is used if zero")

	return opts, set.Parse(args)
}

func main() {
	log.SetFlags(0)

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	req, closeBody, err := buildRequest(opts)
	if err != nil {
		return err
	}
	defer closeBody()

	cfg := config.Default()
	if opts.timeout > 0 {
		cfg.NET.ReadTimeout, cfg.NET.WriteTimeout = opts.timeout, opts.timeout
	}

	ctx, err := client.Dial(opts.addr, cfg)
	if err != nil {
		return err
	}
	defer ctx.Close()

	now := time.Now()
	if err = ctx.Send(req); err != nil {
		return err
	}

	if err = ctx.ResponseBegin(); err != nil {
		return err
	}

	for ctx.Status().IsInformational() {
		if err = ctx.ResponseBegin(); err != nil {
			return err
		}
	}

	if !opts.quiet {
		if err = printPreamble(stderr, req, ctx, time.Since(now)); err != nil {
			return err
		}
	}

	out := stdout
	if len(opts.output) > 0 {
		file, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer file.Close()

		out = file
	}

	if opts.json {
		err = dumpJSON(ctx, out)
	} else {
		err = streamBody(ctx, out, cfg.NET.ReadBufferSize)
	}

	if err != nil || opts.quiet {
		return err
	}

	for _, trailer := range ctx.Trailers() {
		_, _ = fmt.Fprintln(stderr, trailerStyle.Render(trailer.String()))
	}

	return nil
}

func buildRequest(opts options) (req *client.Request, closeBody func(), err error) {
	m := method.Parse(strings.ToUpper(opts.method))
	if m == method.Unknown {
		return nil, nil, fmt.Errorf("unknown method: %s, expected one of %s", opts.method, methodNames())
	}

	req = client.NewRequest(m, opts.path)
	for _, h := range opts.headers {
		name, value, _ := strings.Cut(h, ":")
		req.WithHeader(name, value)
	}

	if err = req.Err(); err != nil {
		return nil, nil, err
	}

	closeBody = func() {}

	switch {
	case strings.HasPrefix(opts.data, "@"):
		file, err := os.Open(opts.data[1:])
		if err != nil {
			return nil, nil, err
		}

		req.WithBodyReader(file, -1)
		closeBody = func() { _ = file.Close() }
	case len(opts.data) > 0:
		req.WithBodyString(opts.data)
	}

	return req, closeBody, nil
}

func methodNames() string {
	names := make([]string, len(method.List))
	for i, m := range method.List {
		names[i] = m.String()
	}

	return strings.Join(names, ", ")
}

var (
	methodStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true).Background(lipgloss.Color("12")).Width(8).Align(lipgloss.Center)
	headerNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	trailerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

func printPreamble(w io.Writer, req *client.Request, ctx *client.Context, elapsed time.Duration) error {
	line := ctx.Status()
	_, _ = fmt.Fprintf(w, "%s %s %s %s in %s\n",
		methodStyle.Render(req.Method.String()),
		req.Target(),
		line.Version,
		statusStyle(int(line.Code)).Render(fmt.Sprintf("%d %s", line.Code, line.Reason)),
		elapsed,
	)

	for h, err := range ctx.ResponseHeaders() {
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(w, "%s: %s\n", headerNameStyle.Render(h.Name), h.Value)
	}

	_, _ = fmt.Fprintln(w)
	return nil
}

// statusStyle colors the status code by its class.
func statusStyle(code int) lipgloss.Style {
	switch {
	case code >= 200 && code < 300:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	case code >= 300 && code < 400:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	case code >= 400 && code < 500:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	case code >= 500:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	}
}

// streamBody copies the body piece by piece, never holding it as a whole.
func streamBody(ctx *client.Context, out io.Writer, buffSize int) error {
	buff := make([]byte, buffSize)

	for ctx.HasMoreBody() {
		n, err := ctx.ReadBodyChunk(buff)
		if err != nil {
			return err
		}

		if _, err = out.Write(buff[:n]); err != nil {
			return err
		}
	}

	return nil
}

func dumpJSON(ctx *client.Context, out io.Writer) error {
	resp, err := ctx.Response()
	if err != nil {
		return err
	}

	var model any
	if err = resp.JSON(&model); err != nil {
		return err
	}

	data, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(model, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}
