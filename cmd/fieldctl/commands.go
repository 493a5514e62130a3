package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/fieldwire/internal/config"
	"github.com/danmuck/fieldwire/internal/input"
	"github.com/danmuck/fieldwire/internal/logging"
	"github.com/danmuck/fieldwire/internal/observability"
	"github.com/danmuck/fieldwire/internal/protocol"
	"github.com/danmuck/fieldwire/internal/sink"
	"github.com/rs/zerolog/log"
	"gopkg.in/alecthomas/kingpin.v2"
)

type sendFlags struct {
	script    *string
	schemaOut *string
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	con := streams{in: stdin, out: stdout}

	app := kingpin.New("fieldctl", "Encode typed field lines into a binary message and send it.")
	app.Writer(stdout)
	exitCode := -1
	app.Terminate(func(code int) {
		exitCode = code
	})
	configPath := app.Flag("config", "TOML config file.").Short('c').String()

	tcpCmd := app.Command("tcp", "Send the message to a TCP peer.")
	tcpAddr := tcpCmd.Flag("addr", "Peer address, host:port.").Short('a').String()
	tcpTimeout := tcpCmd.Flag("timeout", "Dial and write timeout.").Duration()
	tcpSend := sendFlags{
		script:    tcpCmd.Flag("script", "Read fields from a file instead of stdin.").String(),
		schemaOut: tcpCmd.Flag("schema-out", "Write the message schema as TOML.").String(),
	}

	fileCmd := app.Command("file", "Write the message to a file.")
	fileName := fileCmd.Flag("file-name", "Output file.").Short('f').String()
	fileCompression := fileCmd.Flag("compression", "none, snappy or zstd.").Enum(
		config.CompressionNone, config.CompressionSnappy, config.CompressionZstd)
	fileSend := sendFlags{
		script:    fileCmd.Flag("script", "Read fields from a file instead of stdin.").String(),
		schemaOut: fileCmd.Flag("schema-out", "Write the message schema as TOML.").String(),
	}

	decodeCmd := app.Command("decode", "Print a message file using the config schema.")
	decodeIn := decodeCmd.Flag("in", "Message file.").Short('i').Required().String()
	decodeCompression := decodeCmd.Flag("compression", "none, snappy or zstd.").Enum(
		config.CompressionNone, config.CompressionSnappy, config.CompressionZstd)

	configCmd := app.Command("config", "Write a sample config file.")
	configOut := configCmd.Flag("output", "Path to write.").Short('o').Default("fieldctl.toml").String()
	configForce := configCmd.Flag("force", "Overwrite an existing file.").Bool()

	command, err := app.Parse(args)
	if exitCode == 0 {
		// --help and the help command render usage and ask to exit cleanly.
		return nil
	}
	if err != nil {
		return err
	}

	if command == configCmd.FullCommand() {
		if err := config.WriteTemplate(*configOut, *configForce); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote config template to %s\n", *configOut)
		return nil
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.LoggingConfig())

	switch command {
	case tcpCmd.FullCommand():
		cfg.Sink.Mode = config.ModeTCP
		if *tcpAddr != "" {
			cfg.Sink.Addr = *tcpAddr
		}
		if *tcpTimeout > 0 {
			cfg.Sink.Timeout = *tcpTimeout
		}
		err = send(ctx, con, cfg, tcpSend)
	case fileCmd.FullCommand():
		cfg.Sink.Mode = config.ModeFile
		if *fileName != "" {
			cfg.Sink.File = *fileName
		}
		if *fileCompression != "" {
			cfg.Sink.Compression = *fileCompression
		}
		err = send(ctx, con, cfg, fileSend)
	case decodeCmd.FullCommand():
		compression := cfg.Sink.Compression
		if *decodeCompression != "" {
			compression = *decodeCompression
		}
		err = decode(con.out, *decodeIn, compression, cfg.Schema)
	default:
		err = fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return err
	}
	return writeMetrics(cfg.Metrics)
}

func loadConfig(path string) (config.Config, error) {
	if strings.TrimSpace(path) == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	log.Info().Str("path", path).Msg("loaded config")
	return cfg, nil
}

// send opens the sink first so a bad address fails before anything is typed,
// then builds the message and writes it in one call. The sink timeout bounds
// the dial and the write only; reading input waits as long as the user does.
func send(ctx context.Context, con streams, cfg config.Config, flags sendFlags) error {
	out, err := sink.Open(ctx, cfg.Sink)
	if err != nil {
		return err
	}

	msg, err := readMessage(ctx, con, *flags.script)
	if err != nil {
		out.Close()
		return err
	}
	b, err := protocol.Marshal(msg)
	if err != nil {
		out.Close()
		return err
	}
	observability.RecordMessageSize(len(b))

	n, err := out.Send(ctx, b)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Error().Err(err).Str("sink", out.Name()).Int("written", n).Msg("send failed")
		return err
	}
	fmt.Fprintf(con.out, "Written %d bytes\n", n)
	log.Info().Str("sink", out.Name()).Int("bytes", n).Uint32("bitmap", msg.Bitmap()).Msg("message sent")

	if *flags.schemaOut != "" {
		if err := writeSchema(*flags.schemaOut, protocol.SchemaOf(msg)); err != nil {
			return err
		}
	}
	fmt.Fprintln(con.out, "Quit")
	return nil
}

func readMessage(ctx context.Context, con streams, script string) (*protocol.Message, error) {
	if script != "" {
		text, err := os.ReadFile(script)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		return protocol.ParseMessage(ctx, string(text))
	}
	fmt.Fprintln(con.out, "Enter message")
	return input.ReadMessage(ctx, con.in, func(line int, text string, err error) {
		log.Warn().Int("line", line).Str("text", text).Err(err).Msg("line rejected")
		fmt.Fprintln(con.out, err)
	})
}

func writeSchema(path string, schema protocol.Schema) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	defer f.Close()
	doc := struct {
		Schema map[string]string `toml:"schema"`
	}{Schema: schema.Raw()}
	if err := toml.NewEncoder(f).Encode(doc); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	return f.Close()
}

func decode(out io.Writer, path, compression string, schema protocol.Schema) error {
	r, err := sink.OpenFile(path, compression)
	if err != nil {
		return err
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	msg, err := protocol.Unmarshal(b, schema)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "bitmap\t%032b\n", msg.Bitmap())
	for _, f := range msg.Fields() {
		text := f.Value.String()
		if d, ok := f.Value.(protocol.Decimal); ok {
			text = d.Value().String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", f.Number, f.Value.Tag(), text)
	}
	return tw.Flush()
}

func writeMetrics(cfg config.Metrics) error {
	if cfg.Textfile == "" {
		return nil
	}
	start := time.Now()
	if err := observability.WriteTextfile(cfg.Textfile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	log.Debug().Str("path", cfg.Textfile).Dur("took", time.Since(start)).Msg("metrics written")
	return nil
}
