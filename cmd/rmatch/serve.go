package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Comcast/regular/sio"
	"github.com/Comcast/regular/storage/bolt"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cobra"
)

var serveOpts struct {
	stdio       bool
	tags        bool
	timestamps  bool
	shellExpand bool

	ws string
	ui bool

	broker     string
	clientID   string
	subTopics  string
	replyTopic string
}

var serveCmd = &cobra.Command{
	Use:   "serve (--stdio | --ws ADDR | --mqtt BROKER)",
	Short: "Answer match requests",
	Long: `Serve answers match requests using specs from the library (--db).

A request is a JSON object like

  {"id":"1","spec":"turnstile","sequence":["coin","push"]}

or, with an expression in the text syntax instead of a spec name,

  {"id":"2","expression":"\"coin\"+","sequence":["coin"]}

Each request gets a result like {"id":"1","spec":"turnstile","matches":false}.

With --stdio, requests are lines on stdin and results are lines on
stdout.  With --ws, requests are WebSocket messages at /ws/api (and
POSTs to /api/match).  With --mqtt, requests arrive on the --sub topics
and results go to the request's replyTo or the --reply topic.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.BoolVar(&serveOpts.stdio, "stdio", false, "Serve stdin/stdout")
	f.BoolVar(&serveOpts.tags, "tags", false, "Tag stdout lines")
	f.BoolVar(&serveOpts.timestamps, "timestamps", false, "Timestamp stdout lines")
	f.BoolVar(&serveOpts.shellExpand, "shell-expand", false, "Expand <<shell commands>> in stdin lines")

	f.StringVar(&serveOpts.ws, "ws", "", "Serve WebSockets on this address (like :8080)")
	f.BoolVar(&serveOpts.ui, "ui", false, "Serve a test page at /ws/ui")

	f.StringVar(&serveOpts.broker, "mqtt", "", "MQTT broker (like tcp://localhost:1883)")
	f.StringVar(&serveOpts.clientID, "client-id", "rmatch", "MQTT client id")
	f.StringVar(&serveOpts.subTopics, "sub", "regular/requests", "MQTT request topics (comma-separated, each optionally TOPIC:QOS)")
	f.StringVar(&serveOpts.replyTopic, "reply", "regular/results", "MQTT default result topic (optionally TOPIC:QOS)")
}

// couplings makes the Couplings the flags ask for.
func couplings() (sio.Couplings, error) {
	var cs []sio.Couplings

	if serveOpts.stdio {
		c := sio.NewStdio(serveOpts.shellExpand)
		c.Tags = serveOpts.tags
		c.Timestamps = serveOpts.timestamps
		cs = append(cs, c)
	}

	if serveOpts.ws != "" {
		c := sio.NewWebSockets(serveOpts.ws)
		c.UI = serveOpts.ui
		c.Verbose = verbose
		cs = append(cs, c)
	}

	if serveOpts.broker != "" {
		opts := mqtt.NewClientOptions()
		opts.AddBroker(serveOpts.broker)
		opts.SetClientID(serveOpts.clientID)
		opts.SetAutoReconnect(true)
		c := sio.NewMQTT(opts, serveOpts.subTopics, serveOpts.replyTopic)
		c.Verbose = verbose
		cs = append(cs, c)
	}

	switch len(cs) {
	case 0:
		return nil, errors.New("need --stdio, --ws, or --mqtt")
	case 1:
		return cs[0], nil
	}
	return nil, errors.New("give only one of --stdio, --ws, or --mqtt")
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := couplings()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withLibrary(ctx, func(lib *bolt.Storage) error {
		svc := sio.NewService(lib)
		svc.Verbose = verbose

		if err := svc.Run(ctx, c); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
}
