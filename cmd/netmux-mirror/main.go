// Command netmux-mirror runs a single-process TCP server that mirrors every
// byte it receives straight back to the sender, built directly on
// reactor.Multiplexer and transport.StreamTransport with no TLS layer.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orizon-lang/netmux/internal/config"
	"github.com/orizon-lang/netmux/internal/netio"
	"github.com/orizon-lang/netmux/internal/reactor"
	"github.com/orizon-lang/netmux/internal/transport"
	"github.com/orizon-lang/netmux/internal/xlog"
)

// mirrorApp echoes every received chunk straight back out.
type mirrorApp struct {
	down transport.Down
}

func (a *mirrorApp) Init() reactor.EventResult    { return reactor.Ok }
func (a *mirrorApp) HasMoreData() bool            { return false }
func (a *mirrorApp) Produce() reactor.EventResult { return reactor.Ok }

func (a *mirrorApp) Consume(b []byte) reactor.EventResult {
	a.down.Enqueue(b)
	a.down.RegisterWriting()
	return reactor.Ok
}

func (a *mirrorApp) HandleTimeout(int64, time.Time) reactor.EventResult { return reactor.Ok }

func main() {
	port := flag.Int("port", 0, "port to listen on (0 picks an ephemeral port)")
	local := flag.Bool("local", true, "bind to loopback only instead of all interfaces")
	verbose := flag.Bool("verbose", false, "enable info-level logging")
	debug := flag.Bool("debug", false, "enable debug-level logging")
	configFile := flag.String("config", "", "path to a config file (overrides -port/-local)")
	flag.Parse()

	log := xlog.New(*verbose, *debug)

	cfg := config.Defaults()
	if *configFile != "" {
		parsed, err := config.Parse(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "netmux-mirror: %v\n", err)
			os.Exit(1)
		}
		cfg = parsed
	} else {
		cfg.Set(config.KeyMultiplexerPort, int64(*port))
		cfg.Set(config.KeyMultiplexerLocal, *local)
	}

	factory := reactor.SocketManagerFactoryFunc(func(mx *reactor.Multiplexer, sock netio.TCPStreamSocket) (reactor.SocketManager, reactor.Operation) {
		st := transport.New(mx, sock, cfg, nil, func(down transport.Down) transport.Layer {
			return transport.NewAdaptor(down, func(down transport.Down) transport.Application {
				return &mirrorApp{down: down}
			})
		})
		return st, reactor.Read
	})

	mx, boundPort, err := reactor.New(cfg, factory, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "netmux-mirror: %v\n", err)
		os.Exit(1)
	}
	mx.Start()
	fmt.Printf("netmux-mirror listening on port %d\n", boundPort)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc

	_ = mx.SubmitShutdown()
	mx.Join()
	_ = mx.Close()
}
