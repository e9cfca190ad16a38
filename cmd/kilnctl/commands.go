package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"kiln-plugin/internal/config"
	"kiln-plugin/internal/dispatch"
	"kiln-plugin/internal/settings"
	"kiln-plugin/internal/vault"
	"kiln-plugin/pkg/logger"
	"kiln-plugin/pkg/plugin"
)

var commandActions = &cli.Command{
	Name:  "actions",
	Usage: "list the registered actions and their similes",
	Flags: []cli.Flag{jsonFlag},
	Action: func(ctx *cli.Context) error {
		manager, err := newManager(ctx)
		if err != nil {
			return err
		}
		type actionInfo struct {
			Name        string   `json:"name"`
			Similes     []string `json:"similes"`
			Description string   `json:"description"`
		}
		var list []actionInfo
		for _, action := range manager.Actions() {
			list = append(list, actionInfo{Name: action.Name(), Similes: action.Similes(), Description: action.Description()})
		}
		if ctx.Bool(jsonFlag.Name) {
			return writeJSON(ctx, list)
		}
		for _, a := range list {
			fmt.Fprintf(ctx.App.Writer, "%s\t%s\n  similes: %s\n", a.Name, a.Description, strings.Join(a.Similes, ", "))
		}
		return nil
	},
}

var textFlag = &cli.StringFlag{
	Name:  "text",
	Usage: "message text passed to the action",
}

var commandRun = &cli.Command{
	Name:      "run",
	Usage:     "run an action once and print its reply",
	ArgsUsage: "<action|simile>",
	Flags:     []cli.Flag{textFlag, &cli.DurationFlag{Name: "timeout", Value: time.Minute, Usage: "overall deadline"}},
	Action: func(ctx *cli.Context) error {
		name := strings.TrimSpace(ctx.Args().First())
		if name == "" {
			return cli.Exit("missing action name", 2)
		}
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		sources, err := settings.FromConfig(ctx.Context, cfg.Settings, logger.Named("settings"))
		if err != nil {
			return err
		}
		defer sources.Close()

		manager, err := newManagerFromConfig(cfg)
		if err != nil {
			return err
		}
		runCtx, cancel := contextWithTimeout(ctx, ctx.Duration("timeout"))
		defer cancel()

		outcome, err := manager.Invoke(runCtx, name, sources, plugin.Message{Text: ctx.String(textFlag.Name)},
			func(content plugin.Content) error {
				_, werr := fmt.Fprintln(ctx.App.Writer, content.Text)
				return werr
			})
		if err != nil {
			return err
		}
		if !outcome.OK {
			if outcome.Err != nil {
				return cli.Exit(fmt.Sprintf("%s produced no result: %v", outcome.Action, outcome.Err), 1)
			}
			return cli.Exit(fmt.Sprintf("%s failed", outcome.Action), 1)
		}
		return nil
	},
}

var checksumFlag = &cli.BoolFlag{
	Name:  "checksum",
	Usage: "print EIP-55 checksummed addresses",
}

var rpcFlag = &cli.StringFlag{
	Name:    "rpc",
	Usage:   "Ethereum RPC endpoint used to check that every vault has deployed code",
	EnvVars: []string{"KILN_ETH_RPC"},
}

var commandVaults = &cli.Command{
	Name:  "vaults",
	Usage: "print the Kiln vault addresses without contacting any API",
	Flags: []cli.Flag{checksumFlag, jsonFlag, rpcFlag},
	Action: func(ctx *cli.Context) error {
		list := vault.List()
		if err := vault.ValidateAll(list); err != nil {
			return err
		}
		if rpcURL := ctx.String(rpcFlag.Name); rpcURL != "" {
			return probeVaults(ctx, rpcURL, list)
		}
		if ctx.Bool(checksumFlag.Name) {
			for i := range list {
				list[i].Address = list[i].Checksum()
			}
		}
		if ctx.Bool(jsonFlag.Name) {
			return writeJSON(ctx, list)
		}
		for _, v := range list {
			fmt.Fprintf(ctx.App.Writer, "%s\t%s\t%s\n", v.Protocol, v.Asset, v.Address)
		}
		return nil
	},
}

var commandSchema = &cli.Command{
	Name:  "schema",
	Usage: "print the JSON schema of the plugin settings",
	Action: func(ctx *cli.Context) error {
		return writeJSON(ctx, config.SettingsSchema())
	},
}

var commandSubmit = &cli.Command{
	Name:      "submit",
	Usage:     "publish an invocation request to the configured dispatch queue",
	ArgsUsage: "<action|simile>",
	Flags:     []cli.Flag{textFlag, &cli.StringFlag{Name: "user", Usage: "user id attached to the request"}},
	Action: func(ctx *cli.Context) error {
		name := strings.TrimSpace(ctx.Args().First())
		if name == "" {
			return cli.Exit("missing action name", 2)
		}
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		if cfg.Dispatch.Driver == "memory" {
			return cli.Exit("the memory dispatch driver cannot be reached from another process", 2)
		}
		transport, err := dispatch.Open(ctx.Context, cfg.Dispatch)
		if err != nil {
			return err
		}
		defer transport.Close()

		id, err := dispatch.Submit(ctx.Context, transport.Requests, dispatch.Request{
			Action: name,
			Text:   ctx.String(textFlag.Name),
			UserID: ctx.String("user"),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, id)
		return nil
	},
}

func probeVaults(ctx *cli.Context, rpcURL string, list []vault.Vault) error {
	probeCtx, cancel := contextWithTimeout(ctx, 30*time.Second)
	defer cancel()
	client, err := vault.Dial(probeCtx, rpcURL)
	if err != nil {
		return err
	}
	defer client.Close()

	deployments, err := vault.Probe(probeCtx, client, list)
	if err != nil {
		return err
	}
	if ctx.Bool(jsonFlag.Name) {
		return writeJSON(ctx, deployments)
	}
	missing := 0
	for _, d := range deployments {
		status := fmt.Sprintf("deployed (%d bytes)", d.CodeSize)
		switch {
		case d.Error != "":
			status = "error: " + d.Error
			missing++
		case !d.Deployed:
			status = "no code"
			missing++
		}
		fmt.Fprintf(ctx.App.Writer, "%s\t%s\t%s\t%s\n", d.Protocol, d.Asset, d.Checksum(), status)
	}
	if missing > 0 {
		return cli.Exit(fmt.Sprintf("%d vault(s) could not be confirmed on chain", missing), 1)
	}
	return nil
}

func writeJSON(ctx *cli.Context, v any) error {
	enc := json.NewEncoder(ctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
