package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
)

// CLI command line interactive interface
type CLI struct {
	client  *Client
	baseURL string
	scanner *bufio.Scanner
	running bool
}

// NewCLI creates a new CLI instance
func NewCLI(serverURL string) *CLI {
	return &CLI{
		client:  NewClient(serverURL),
		baseURL: serverURL,
		scanner: bufio.NewScanner(os.Stdin),
		running: true,
	}
}

// Start starts the CLI main loop
func (c *CLI) Start() {
	fmt.Printf("platconf CLI - connected to %s\n", c.baseURL)
	fmt.Println("Type 'help' for available commands")

	for c.running {
		fmt.Print("\n> ")
		if !c.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(c.scanner.Text())
		if input == "" {
			continue
		}

		c.handleCommand(input)
	}
}

func (c *CLI) handleCommand(input string) {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		c.printHelp()
	case "settings":
		c.cmdSettings(args)
	case "get":
		c.cmdGet(args)
	case "set":
		c.cmdSet(args, false)
	case "set-secret":
		c.cmdSet(args, true)
	case "delete":
		c.cmdDelete(args)
	case "init":
		if err := c.client.InitializeDefaults(); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println("Default settings initialized")
	case "maintenance":
		c.cmdMaintenance(args)
	case "stats":
		c.cmdStats()
	case "watch":
		c.cmdWatch()
	case "exit", "quit":
		c.running = false
	default:
		fmt.Printf("Unknown command: %s (try 'help')\n", cmd)
	}
}

func (c *CLI) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  settings [category]        List settings, optionally one category")
	fmt.Println("  get <key>                  Show one setting")
	fmt.Println("  set <key> <value>          Write a plaintext setting")
	fmt.Println("  set-secret <key> <value>   Write an encrypted setting")
	fmt.Println("  delete <key>               Remove a setting")
	fmt.Println("  init                       Seed the default settings catalog")
	fmt.Println("  maintenance <on|off>       Toggle maintenance mode")
	fmt.Println("  stats                      Show settings channel connection stats")
	fmt.Println("  watch                      Stream settings change events (Ctrl-C to stop)")
	fmt.Println("  exit                       Quit")
}

func (c *CLI) cmdSettings(args []string) {
	var err error
	var settings []struct {
		Key      string
		Value    string
		Category string
	}

	if len(args) > 0 {
		list, lerr := c.client.ListSettingsByCategory(args[0])
		err = lerr
		for _, s := range list {
			settings = append(settings, struct{ Key, Value, Category string }{s.Key, s.Value, s.Category})
		}
	} else {
		list, lerr := c.client.ListSettings()
		err = lerr
		for _, s := range list {
			settings = append(settings, struct{ Key, Value, Category string }{s.Key, s.Value, s.Category})
		}
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for _, s := range settings {
		fmt.Printf("  %-40s %-10s %s\n", s.Key, s.Category, s.Value)
	}
	fmt.Printf("%d settings\n", len(settings))
}

func (c *CLI) cmdGet(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: get <key>")
		return
	}
	setting, err := c.client.GetSetting(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("%s = %s (%s)\n", setting.Key, setting.Value, setting.Category)
	if setting.Description != "" {
		fmt.Printf("  %s\n", setting.Description)
	}
}

func (c *CLI) cmdSet(args []string, encrypted bool) {
	if len(args) < 2 {
		fmt.Println("Usage: set <key> <value>")
		return
	}
	key, value := args[0], strings.Join(args[1:], " ")
	if err := c.client.SetSetting(key, value, encrypted); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Updated %s\n", key)
}

func (c *CLI) cmdDelete(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: delete <key>")
		return
	}
	deleted, err := c.client.DeleteSetting(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if deleted {
		fmt.Printf("Deleted %s\n", args[0])
	} else {
		fmt.Printf("No such setting: %s\n", args[0])
	}
}

func (c *CLI) cmdMaintenance(args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		fmt.Println("Usage: maintenance <on|off>")
		return
	}
	value := "false"
	if args[0] == "on" {
		value = "true"
	}
	if err := c.client.SetSetting("system.maintenance.enabled", value, false); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Maintenance mode %s\n", args[0])
}

func (c *CLI) cmdStats() {
	stats, err := c.client.ConnectionStats()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Connected observers: %d (as of %s)\n", stats.TotalConnections, stats.Timestamp)
}

// cmdWatch subscribes to the settings channel and prints events until
// interrupted.
func (c *CLI) cmdWatch() {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws/settings"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer conn.Close()

	fmt.Println("Watching settings changes (Ctrl-C to stop)...")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT)
	defer signal.Stop(interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var pretty map[string]interface{}
			if json.Unmarshal(msg, &pretty) == nil {
				out, _ := json.Marshal(pretty)
				fmt.Printf("%s\n", out)
			}
		}
	}()

	select {
	case <-interrupt:
	case <-done:
	}
}
