// Package main is a service that answers decision requests via
// HTTP, websockets, and MQTT.
//
//	matchd -h :8080 -w -p specs.db -mq tcp://localhost:1883 -mq-in matchbox/requests
//
// Then
//
//	curl -X PUT --data-binary @signals.yaml localhost:8080/specs/signals
//	curl -d '{"@tag":"Green"}' localhost:8080/decide/signals/go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/Comcast/matchbox/interpreters"
	"github.com/Comcast/matchbox/interpreters/ecmascript"
	"github.com/Comcast/matchbox/storage"
	"github.com/Comcast/matchbox/storage/bolt"
	"github.com/Comcast/matchbox/tools"
	"github.com/Comcast/matchbox/util"

	"gopkg.in/yaml.v2"
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
}

// Config is the service configuration.  A YAML file can provide it,
// and command-line flags override what the file says.
type Config struct {
	HTTPPort   string        `yaml:"httpPort"`
	WebSockets bool          `yaml:"websockets"`
	StoreFile  string        `yaml:"storeFile"`
	LibDir     string        `yaml:"libDir"`
	SpecDir    string        `yaml:"specDir"`
	TTL        time.Duration `yaml:"ttl"`
	Verbose    bool          `yaml:"verbose"`
	MQTT       MQTTConfig    `yaml:"mqtt"`
}

func DefaultConfig() *Config {
	return &Config{
		HTTPPort: ":8080",
		LibDir:   ".",
		MQTT: MQTTConfig{
			ClientId:      "matchd",
			KeepAlive:     10,
			Clean:         true,
			Quiesce:       100,
			RequestTopics: "matchbox/requests",
			ResponseTopic: "matchbox/responses",
		},
	}
}

// ReadConfig overlays the YAML in the file on the given Config.
func ReadConfig(filename string, cfg *Config) error {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(bs, cfg)
}

func parseConfig(args []string) (*Config, error) {
	var (
		cfg = DefaultConfig()
		fs  = flag.NewFlagSet("matchd", flag.ContinueOnError)

		configFile = fs.String("config", "", "optional YAML config file")
		httpPort   = fs.String("h", cfg.HTTPPort, "HTTP service port (empty to disable)")
		websockets = fs.Bool("w", cfg.WebSockets, "start websockets service at /ws (requires HTTP service)")
		storeFile  = fs.String("p", cfg.StoreFile, "optional bbolt filename for persistence")
		libDir     = fs.String("i", cfg.LibDir, "directory for guard libraries")
		specDir    = fs.String("s", cfg.SpecDir, "optional directory of specs (*.yaml) to load at startup")
		ttl        = fs.Duration("e", cfg.TTL, "spec cache TTL (0 for no expiration)")
		verbose    = fs.Bool("v", cfg.Verbose, "verbose logging")
		broker     = fs.String("mq", cfg.MQTT.Broker, "MQTT broker (like tcp://localhost:1883; empty to disable)")
		reqTopics  = fs.String("mq-in", cfg.MQTT.RequestTopics, "MQTT request topic(s)")
		respTopic  = fs.String("mq-out", cfg.MQTT.ResponseTopic, "MQTT default response topic")
	)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configFile != "" {
		if err := ReadConfig(*configFile, cfg); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "h":
			cfg.HTTPPort = *httpPort
		case "w":
			cfg.WebSockets = *websockets
		case "p":
			cfg.StoreFile = *storeFile
		case "i":
			cfg.LibDir = *libDir
		case "s":
			cfg.SpecDir = *specDir
		case "e":
			cfg.TTL = *ttl
		case "v":
			cfg.Verbose = *verbose
		case "mq":
			cfg.MQTT.Broker = *broker
		case "mq-in":
			cfg.MQTT.RequestTopics = *reqTopics
		case "mq-out":
			cfg.MQTT.ResponseTopic = *respTopic
		}
	})

	return cfg, nil
}

// makeService builds the Service (and opens its storage).
func makeService(ctx context.Context, cfg *Config) (*Service, error) {
	var st storage.Storage
	if cfg.StoreFile == "" {
		st = storage.NewMemStorage()
	} else {
		b, err := bolt.NewStorage(cfg.StoreFile)
		if err != nil {
			return nil, err
		}
		b.Log = &util.Logger{Prefix: "bolt ", Enabled: cfg.Verbose}
		st = b
	}
	if err := st.Open(ctx); err != nil {
		return nil, err
	}

	interps := interpreters.Standard(ecmascript.MakeFileLibraryProvider(cfg.LibDir))
	s := NewService(st, interps, NewSpecCache(cfg.TTL, 32))
	s.Log = &util.Logger{Enabled: cfg.Verbose}

	if cfg.SpecDir != "" {
		if err := s.LoadSpecs(ctx, cfg.SpecDir); err != nil {
			st.Close(ctx)
			return nil, err
		}
	}

	return s, nil
}

// LoadSpecs PutSpecs every *.yaml file in the directory.  The file
// name (without .yaml) is the spec name.
func (s *Service) LoadSpecs(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	n := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		src, err := tools.ReadFileWithInlines(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if _, err = s.PutSpec(ctx, strings.TrimSuffix(name, ".yaml"), src); err != nil {
			return err
		}
		n++
	}
	log.Printf("Loaded %d specs from %s", n, dir)
	return nil
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	s, err := makeService(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Storage.Close(context.Background())

	if cfg.MQTT.Broker != "" {
		c, err := NewMQTTCouplings(ctx, s, &cfg.MQTT)
		if err != nil {
			log.Fatal(err)
		}
		if err = c.Start(ctx); err != nil {
			log.Fatal(err)
		}
		defer c.Stop(context.Background())
	}

	if cfg.HTTPPort != "" {
		mux := http.NewServeMux()
		mux.Handle("/", s.Handler())
		if cfg.WebSockets {
			mux.Handle("/ws", s.WebSocketHandler(ctx))
		}
		server := &http.Server{
			Addr:    cfg.HTTPPort,
			Handler: mux,
		}
		go func() {
			<-ctx.Done()
			server.Shutdown(context.Background())
		}()
		log.Printf("HTTP service on %s", cfg.HTTPPort)
		if err = server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Print(err)
		}
	} else {
		<-ctx.Done()
	}

	log.Printf("main terminating")
}
