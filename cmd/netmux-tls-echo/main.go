// Command netmux-tls-echo runs a single-process TLS-terminated TCP server
// that echoes every decrypted byte straight back to the sender, wiring
// reactor.Multiplexer, transport.StreamTransport, and tlslayer.Layer
// together the way a real application's layer stack would.
package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/orizon-lang/netmux/internal/config"
	"github.com/orizon-lang/netmux/internal/netio"
	"github.com/orizon-lang/netmux/internal/reactor"
	"github.com/orizon-lang/netmux/internal/tlslayer"
	"github.com/orizon-lang/netmux/internal/transport"
	"github.com/orizon-lang/netmux/internal/xlog"
)

// echoApp echoes every decrypted chunk straight back through the TLS layer.
type echoApp struct {
	down transport.Down
}

func (a *echoApp) Init() reactor.EventResult    { return reactor.Ok }
func (a *echoApp) HasMoreData() bool            { return false }
func (a *echoApp) Produce() reactor.EventResult { return reactor.Ok }

func (a *echoApp) Consume(b []byte) reactor.EventResult {
	a.down.Enqueue(b)
	a.down.RegisterWriting()
	return reactor.Ok
}

func (a *echoApp) HandleTimeout(int64, time.Time) reactor.EventResult { return reactor.Ok }

func main() {
	port := flag.Int("port", 0, "port to listen on (0 picks an ephemeral port)")
	local := flag.Bool("local", true, "bind to loopback only instead of all interfaces")
	certFile := flag.String("cert", "", "PEM certificate file (omit to generate a self-signed dev cert)")
	keyFile := flag.String("key", "", "PEM private key file (omit to generate a self-signed dev cert)")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated hostnames/IPs for the generated dev cert")
	verbose := flag.Bool("verbose", false, "enable info-level logging")
	debug := flag.Bool("debug", false, "enable debug-level logging")
	flag.Parse()

	log := xlog.New(*verbose, *debug)

	cfg := config.Defaults()
	cfg.Set(config.KeyMultiplexerPort, int64(*port))
	cfg.Set(config.KeyMultiplexerLocal, *local)

	serverTLSCfg, err := loadOrGenerateTLSConfig(*certFile, *keyFile, *hosts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "netmux-tls-echo: %v\n", err)
		os.Exit(1)
	}

	factory := reactor.SocketManagerFactoryFunc(func(mx *reactor.Multiplexer, sock netio.TCPStreamSocket) (reactor.SocketManager, reactor.Operation) {
		st := transport.New(mx, sock, cfg, nil, func(down transport.Down) transport.Layer {
			return tlslayer.NewLayer(tlslayer.RoleServer, serverTLSCfg, down, func(down transport.Down) transport.Layer {
				return &echoApp{down: down}
			})
		})
		return st, reactor.Read
	})

	mx, boundPort, err := reactor.New(cfg, factory, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "netmux-tls-echo: %v\n", err)
		os.Exit(1)
	}
	mx.Start()
	fmt.Printf("netmux-tls-echo listening on port %d\n", boundPort)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc

	_ = mx.SubmitShutdown()
	mx.Join()
	_ = mx.Close()
}

// loadOrGenerateTLSConfig loads certFile/keyFile if both are given, otherwise
// generates a self-signed development certificate for hostsCSV.
func loadOrGenerateTLSConfig(certFile, keyFile, hostsCSV string) (*tls.Config, error) {
	if certFile != "" && keyFile != "" {
		return tlslayer.LoadTLSConfig(certFile, keyFile)
	}
	var hosts []string
	for _, h := range strings.Split(hostsCSV, ",") {
		h = strings.TrimSpace(h)
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	return tlslayer.GenerateSelfSignedTLS(hosts, 24*time.Hour)
}
