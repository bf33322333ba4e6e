// Command toxterm is the terminal entry point: it parses CLI flags, loads
// the on-disk identity and config, wires network.Core's callbacks to the
// window dispatcher, and runs the render/input loop until the user quits or
// the process receives an interrupt.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"toxterm/internal/avatar"
	"toxterm/internal/avcall"
	"toxterm/internal/command"
	"toxterm/internal/config"
	"toxterm/internal/filexfer"
	"toxterm/internal/inputline"
	"toxterm/internal/network"
	"toxterm/internal/registry"
	"toxterm/internal/scrollback"
	"toxterm/internal/term"
	"toxterm/internal/window"
	"toxterm/internal/window/friendlist"
	"toxterm/internal/window/prompt"
)

// Exit codes for the non-zero, printed-reason cases the CLI section names:
// memory exhaustion, terminal init failure, data-file corruption, config
// unreadable.
const (
	exitOK = iota
	exitMemory
	exitTerminal
	exitDataFile
	exitConfig
)

func main() {
	os.Exit(run())
}

// run does the actual work and returns the process exit code; it never
// calls os.Exit itself so deferred cleanup (terminal Fini, core.Kill) always
// runs first.
func run() (code int) {
	dataFile := flag.String("data-file", "", "force the identity data file path (default: per-user config dir)")
	configPath := flag.String("config", "", "force the config file path (default: per-user config dir)")
	ipv4Only := flag.Bool("ipv4", false, "only use IPv4 for DHT bootstrap")
	ipv6Only := flag.Bool("ipv6", false, "only use IPv6 for DHT bootstrap")
	noConnect := flag.Bool("no-connect", false, "skip DHT bootstrap entirely")
	defaultLocale := flag.Bool("default-locale", false, "bypass locale inheritance from the environment")
	nodesList := flag.String("nodes", "", "comma-separated bootstrap node list, overriding the built-in default")
	flag.Parse()

	if *ipv4Only && *ipv6Only {
		fmt.Fprintln(os.Stderr, "toxterm: -ipv4 and -ipv6 are mutually exclusive")
		return exitConfig
	}

	logPath, err := logFilePath()
	if err == nil {
		if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640); err == nil {
			defer f.Close()
			log.SetOutput(f)
		}
	}
	log.SetFlags(log.LstdFlags)

	if *defaultLocale {
		log.Printf("[main] default-locale requested, ignoring LANG/LC_* environment")
	} else if lang := os.Getenv("LANG"); lang != "" {
		log.Printf("[main] inherited locale %s", lang)
	}

	selfPK, err := loadIdentity(*dataFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "toxterm: data file: %v\n", err)
		log.Printf("[main] data-file corruption: %v", err)
		return exitDataFile
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "toxterm: config: %v\n", err)
		log.Printf("[main] config unreadable: %v", err)
		return exitConfig
	}

	screen, err := term.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "toxterm: terminal init: %v\n", err)
		log.Printf("[main] terminal init failure: %v", err)
		return exitTerminal
	}
	defer screen.Fini()

	// A panic here is almost always a failed large allocation (scrollback
	// growth, a huge incoming message) rather than a logic bug the caller
	// should see a stack trace for; report it as the CLI's "memory
	// exhaustion" exit case instead of crashing the terminal mid-draw.
	// Genuine OS-level OOM kills the process before this handler can run.
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "toxterm: out of memory: %v\n", r)
			log.Printf("[main] memory exhaustion: %v", r)
			code = exitMemory
		}
	}()

	now := time.Now
	core := network.NewSimnet(selfPK)

	app := newApp(core, &cfg, screen, now)
	app.configPathOverride = *configPath

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Println("[main] interrupt received, shutting down")
		cancel()
	}()

	if watcher, err := configWatcher(*configPath); err == nil {
		defer watcher.Close()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-watcher.Reloaded():
					app.reloadConfig(*configPath)
				}
			}
		}()
	}

	if *noConnect {
		log.Printf("[main] no-connect set, skipping bootstrap")
	} else {
		nodes := bootstrapNodes(*nodesList, *ipv4Only, *ipv6Only)
		if err := core.Bootstrap(ctx, nodes); err != nil {
			log.Printf("[main] bootstrap: %v", err)
		}
	}

	go func() {
		if err := core.Iterate(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[network] iterate: %v", err)
		}
	}()
	defer core.Kill()

	app.runEventLoop(ctx)
	return exitOK
}

// loadIdentity reads the identity blob from path (or the default per-user
// location), generating and persisting a fresh one on first run. Spec's
// Non-goals exclude defining a new on-disk identity format, so the blob
// here is the bare 32-byte public key; a real binding would instead store
// the Tox secret key and derive the public key from it. A short read or any
// I/O error other than "file does not exist" is treated as corruption.
func loadIdentity(forced string) (network.PublicKey, error) {
	path := forced
	if path == "" {
		var err error
		path, err = defaultDataFilePath()
		if err != nil {
			return network.PublicKey{}, err
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(data) != len(network.PublicKey{}) {
			return network.PublicKey{}, fmt.Errorf("identity file %s has unexpected length %d", path, len(data))
		}
		var pk network.PublicKey
		copy(pk[:], data)
		return pk, nil
	case os.IsNotExist(err):
		pk, genErr := generateIdentity()
		if genErr != nil {
			return network.PublicKey{}, genErr
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return network.PublicKey{}, err
		}
		if err := os.WriteFile(path, pk[:], 0o600); err != nil {
			return network.PublicKey{}, err
		}
		log.Printf("[main] generated new identity at %s", path)
		return pk, nil
	default:
		return network.PublicKey{}, err
	}
}

func generateIdentity() (network.PublicKey, error) {
	var pk network.PublicKey
	if _, err := rand.Read(pk[:]); err != nil {
		return network.PublicKey{}, err
	}
	return pk, nil
}

func defaultDataFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "toxterm", "toxterm_save"), nil
}

func logFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "toxterm", "toxterm.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", err
	}
	return path, nil
}

// loadConfig honors a forced path strictly (a file that exists but can't be
// opened is "config unreadable" and fatal, per the CLI section), and falls
// back to config.Load's non-fatal default-on-miss behavior otherwise.
func loadConfig(forced string) (config.Config, error) {
	if forced == "" {
		return config.Load(), nil
	}
	if f, err := os.Open(forced); err != nil {
		if os.IsNotExist(err) {
			return config.Default(), nil
		}
		return config.Config{}, err
	} else {
		f.Close()
	}
	return config.LoadFrom(forced), nil
}

func configWatcher(forced string) (*config.Watcher, error) {
	dir := ""
	if forced != "" {
		dir = filepath.Dir(forced)
	} else if p, err := config.Path(); err == nil {
		dir = filepath.Dir(p)
	}
	if dir == "" {
		return nil, fmt.Errorf("no config directory to watch")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return config.NewWatcher(dir)
}

func bootstrapNodes(override string, ipv4Only, ipv6Only bool) []string {
	if override != "" {
		var out []string
		for _, n := range strings.Split(override, ",") {
			n = strings.TrimSpace(n)
			if n != "" {
				out = append(out, n)
			}
		}
		return out
	}
	_ = ipv4Only
	_ = ipv6Only
	return defaultBootstrapNodes
}

// defaultBootstrapNodes are placeholder entries; a real binding would ship
// the Tox DHT's actual public node list here.
var defaultBootstrapNodes = []string{}

// app bundles every long-lived handle the event loop and callback wiring
// need, grounded on rustyguts-bken/client/app.go's App struct shape.
type app struct {
	core   network.Core
	cfg    *config.Config
	screen *term.Screen
	now    func() time.Time

	windows     *window.Registry
	dispatcher  *window.Dispatcher
	friends     *registry.FriendRegistry
	blocked     *registry.BlockList
	conferences *registry.ConferenceRegistry
	groups      *registry.GroupRegistry
	transfers   *filexfer.Engine
	avatars     *avatar.Registry
	calls       *avcall.Manager

	cmdCtx *command.Context

	inputs             map[uint16]*inputline.Buffer
	configPathOverride string
}

func newApp(core network.Core, cfg *config.Config, screen *term.Screen, now func() time.Time) *app {
	rows, cols := screen.Size()

	blocked, err := loadBlockList()
	if err != nil {
		log.Printf("[main] block list: %v", err)
		blocked, _ = registry.LoadBlockList(os.DevNull)
	}

	a := &app{
		core:        core,
		cfg:         cfg,
		screen:      screen,
		now:         now,
		windows:     window.New(rows, cols),
		friends:     registry.NewFriendRegistry(),
		blocked:     blocked,
		conferences: registry.NewConferenceRegistry(),
		groups:      registry.NewGroupRegistry(),
		transfers:   filexfer.New(core, now),
		avatars:     avatar.NewRegistry(core),
		calls:       avcall.NewManager(core),
		inputs:      make(map[uint16]*inputline.Buffer),
	}
	a.dispatcher = window.NewDispatcher(a.windows)
	a.cmdCtx = &command.Context{
		Core:        core,
		Windows:     a.windows,
		Friends:     a.friends,
		Blocked:     a.blocked,
		Conferences: a.conferences,
		Groups:      a.groups,
		Transfers:   a.transfers,
		Avatars:     a.avatars,
		Calls:       a.calls,
		Config:      cfg,
		Now:         now,
	}

	a.wireCallbacks()
	a.buildInitialWindows()
	return a
}

// knownKeys adapts the friend registry to prompt.Known, for the
// impersonation-collision warning on incoming friend requests.
type knownKeys struct{ friends *registry.FriendRegistry }

func (k knownKeys) KnownKeys() []network.PublicKey {
	var out []network.PublicKey
	k.friends.Each(func(f *registry.Friend) { out = append(out, f.PubKey) })
	return out
}

func (a *app) buildInitialWindows() {
	promptHistory := scrollback.New(a.cfg.UI.HistorySize)
	promptSink := prompt.New(promptHistory, knownKeys{a.friends}, a.now)
	a.windows.AddWindow(&window.Window{Kind: window.KindPrompt, Name: "prompt", Sink: promptSink})

	flHistory := scrollback.New(a.cfg.UI.HistorySize)
	flSink := friendlist.New(a.core, a.friends, a.blocked, a.transfers, flHistory, a.now)
	a.windows.AddWindow(&window.Window{Kind: window.KindFriendList, Name: "friends", Sink: flSink})
}

func loadBlockList() (*registry.BlockList, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "toxterm", "blocklist")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	return registry.LoadBlockList(path)
}

// reloadConfig re-reads the config file, replaces the live Config with it
// and raises the refresh flag. It does not rebuild the colour palette or
// recompute window display names.
func (a *app) reloadConfig(forced string) {
	cfg, err := loadConfig(forced)
	if err != nil {
		log.Printf("[config] reload: %v", err)
		return
	}
	*a.cfg = cfg
	a.windows.SetRefresh()
	log.Printf("[config] reloaded")
}
