package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/sabridge/internal/config"
	"github.com/muurk/sabridge/internal/discovery"
	"github.com/muurk/sabridge/internal/logging"
	"github.com/muurk/sabridge/internal/serialport"
	"github.com/muurk/sabridge/internal/server"
)

var (
	configPath string
	typeID     int
	serialPort string
	baud       int
	dataBits   int
	parity     string
	stopBits   float64
	listenHost string
	listenPort int
	connectTo  string
	useWS      bool
	useMDNS    bool
	logLevel   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the serial to TCP bridge",
	Long: `Open the appliance serial port and serve the bridge's text protocol.

By default the bridge listens for one inbound TCP connection at a time.
With --connect it acts as the client instead, dialing HOST:PORT and
retrying every 5 seconds until the peer accepts.`,
	RunE: runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to YAML config file")
	flags.IntVar(&typeID, "type-id", 0, "appliance device type id (e.g. 4 for dehumidifier)")
	flags.StringVar(&serialPort, "port", "", "serial port name (e.g. /dev/ttyUSB0)")
	flags.IntVar(&baud, "baud", 0, "serial baud rate (default 9600)")
	flags.IntVar(&dataBits, "data-bits", 0, "serial data bits, one of 5 6 7 8 (default 8)")
	flags.StringVar(&parity, "parity", "", "serial parity, one of N E O S M (default N)")
	flags.Float64Var(&stopBits, "stop-bits", 0, "serial stop bits, one of 1 1.5 2 (default 1)")
	flags.StringVar(&listenHost, "host", "", "local address to listen on (default all interfaces)")
	flags.IntVar(&listenPort, "listen-port", 0, "local TCP port (default 7777)")
	flags.StringVar(&connectTo, "connect", "", "connect as a client to HOST:PORT instead of listening")
	flags.BoolVar(&useWS, "websocket", false, "serve the text protocol over WebSocket at /bridge")
	flags.BoolVar(&useMDNS, "zeroconf", false, "advertise the bridge via mDNS")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default silent)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer logging.Sync()

	port, err := serialport.Open(cfg.Serial)
	if err != nil {
		return err
	}

	gw, err := server.New(cfg, port)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(),
		"--- TCP/IP to serial redirect on %s %d,%d,%s,%v ---\n--- type Ctrl-C / BREAK to quit\n",
		cfg.Serial.Port, cfg.Serial.Baud, cfg.Serial.DataBits, cfg.Serial.Parity, cfg.Serial.StopBits)

	return gw.Run()
}

var scanTimeout time.Duration

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find bridges advertised on the local network",
	RunE: func(cmd *cobra.Command, args []string) error {
		scanner := discovery.NewScanner()
		if scanTimeout > 0 {
			scanner.Timeout = scanTimeout
		}
		bridges, err := scanner.Scan(cmd.Context())
		if err != nil {
			return err
		}
		if len(bridges) == 0 {
			fmt.Println("No bridges found.")
			return nil
		}
		for _, b := range bridges {
			fmt.Println(b)
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "scan timeout (default 5s)")
}

// applyFlags lets explicitly-set CLI flags override file values.
func applyFlags(cfg *config.Config) {
	if typeID != 0 {
		cfg.TypeID = byte(typeID)
	}
	if serialPort != "" {
		cfg.Serial.Port = serialPort
	}
	if baud != 0 {
		cfg.Serial.Baud = baud
	}
	if dataBits != 0 {
		cfg.Serial.DataBits = dataBits
	}
	if parity != "" {
		cfg.Serial.Parity = parity
	}
	if stopBits != 0 {
		cfg.Serial.StopBits = stopBits
	}
	if listenHost != "" {
		cfg.Network.ListenHost = listenHost
	}
	if listenPort != 0 {
		cfg.Network.ListenPort = listenPort
	}
	if connectTo != "" {
		cfg.Network.Connect = connectTo
	}
	if useWS {
		cfg.Network.WebSocket = true
	}
	if useMDNS {
		cfg.Network.Zeroconf = true
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
}
