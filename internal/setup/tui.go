package setup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fyclub/treasury-guardian/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// GeneratedConfigFile is where the wizard writes its result.
const GeneratedConfigFile = "config.gen.yaml"

// RunTUI launches the terminal configuration wizard and writes a yaml config.
func RunTUI() error {
	var (
		listenAddr    string
		rpcURL        string
		ethPriceStr   string
		llmEnabled    bool
		llmEndpoint   string
		llmModel      string
		watchAddrsStr string
		intervalStr   string
		confirm       bool
	)

	// defaults
	listenAddr = ":3001"
	rpcURL = "https://eth.llamarpc.com"
	ethPriceStr = "3500"
	llmEnabled = true
	llmEndpoint = "http://localhost:11434/api/generate"
	llmModel = "qwen2.5:0.5b"
	intervalStr = "1h"

	// step 1: service
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("TREASURY GUARDIAN CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's get your treasury watched in style.\n"))

	fmt.Println(stepStyle.Render("STEP 1: SERVICE"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen Address").
				Description("Address for the HTTP API (e.g. :3001)").
				Value(&listenAddr).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("listen address cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: chain access
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TREASURY GUARDIAN CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: CHAIN ACCESS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Ethereum JSON-RPC URL").
				Value(&rpcURL).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("RPC URL cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("ETH Price (USD)").
				Description("Fixed unit price used for valuation").
				Value(&ethPriceStr).
				Validate(validatePrice),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 3: model backend
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TREASURY GUARDIAN CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: MODEL BACKEND"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable LLM-assisted analysis?").
				Description("Deterministic fallbacks run either way").
				Value(&llmEnabled),
		),
	).Run()
	if err != nil {
		return err
	}

	if llmEnabled {
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Generate Endpoint").
					Value(&llmEndpoint),
				huh.NewInput().
					Title("Model Name").
					Value(&llmModel),
			),
		).Run()
		if err != nil {
			return err
		}
	}

	// step 4: watched addresses
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TREASURY GUARDIAN CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: WATCHED TREASURIES"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Watched Addresses").
				Description("Comma-separated hex addresses, empty to disable scheduled scans").
				Value(&watchAddrsStr).
				Validate(validateAddresses),
			huh.NewInput().
				Title("Scan Interval").
				Description("Duration string (e.g. 30m, 1h)").
				Value(&intervalStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TREASURY GUARDIAN CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Listen: %s\nRPC: %s\nETH Price: %s USD\nLLM: %v (%s)\nWatched: %s\nInterval: %s\n",
		listenAddr, rpcURL, ethPriceStr, llmEnabled, llmModel, orNone(watchAddrsStr), intervalStr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	interval, _ := time.ParseDuration(intervalStr)

	cfgTmp := config.ConfigTmp{
		ListenAddr:     listenAddr,
		RPCURL:         rpcURL,
		ETHPriceUSDStr: ethPriceStr,
		LLMEnabled:     &llmEnabled,
		WatchAddresses: splitAddresses(watchAddrsStr),
		WatchInterval:  interval,
	}
	if llmEnabled {
		cfgTmp.LLMEndpoint = llmEndpoint
		cfgTmp.LLMModel = llmModel
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	if err := os.WriteFile(GeneratedConfigFile, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting guardian...", GeneratedConfigFile)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func validatePrice(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateAddresses(s string) error {
	for _, addr := range splitAddresses(s) {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid address: %s", addr)
		}
	}
	return nil
}

func splitAddresses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
