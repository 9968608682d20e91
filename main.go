package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nicolasleiva/LatentGEO-sub000/internal/auditrun"
	"github.com/nicolasleiva/LatentGEO-sub000/pkg/searchcache"
)

func main() {
	app := &cli.App{
		Name:  "latentgeo",
		Usage: "GEO/SEO audit pipeline: page signals, competitor intelligence, and a prioritized fix plan",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
		},
		Commands: []*cli.Command{
			{
				Name:   "audit",
				Usage:  "Run the full audit pipeline against a target site",
				Action: auditrun.AuditAction,
				Flags: append(commonRunFlags(),
					&cli.StringFlag{Name: "llm-api-key", Usage: "LLM API key", EnvVars: []string{"OPENAI_API_KEY"}},
					&cli.StringFlag{Name: "llm-base-url", Usage: "OpenAI-compatible API base URL", EnvVars: []string{"OPENAI_BASE_URL"}},
					&cli.StringFlag{Name: "model", Usage: "chat model name", Value: "gpt-4o-mini"},
					&cli.StringFlag{Name: "search-api-key", Usage: "Serper API key", EnvVars: []string{"SERPER_API_KEY"}},
					&cli.IntFlag{Name: "max-tokens", Usage: "model context window in tokens"},
					&cli.IntFlag{Name: "max-competitors", Usage: "competitor audit cap (max 5)"},
					&cli.StringFlag{Name: "cache-db", Usage: "search cache database path", Value: searchcache.DefaultDBName},
					&cli.BoolFlag{Name: "no-cache", Usage: "disable the search-result cache"},
				),
			},
			{
				Name:   "page",
				Usage:  "Audit a single page and print its signal summary",
				Action: auditrun.PageAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Usage: "page URL to audit", Required: true},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
					&cli.StringFlag{Name: "format", Usage: "yaml or json", Value: "yaml"},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}},
				},
			},
			{
				Name:   "score",
				Usage:  "Compute the deterministic GEO score without agent calls",
				Action: auditrun.ScoreAction,
				Flags:  commonRunFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commonRunFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "target site URL"},
		&cli.StringFlag{Name: "pages", Usage: "comma-separated additional page URLs"},
		&cli.StringFlag{Name: "market", Usage: "target market, appended to competitor queries"},
		&cli.IntFlag{Name: "workers", Usage: "concurrent page audits", Value: 4},
		&cli.StringFlag{Name: "config", Usage: "YAML config file"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
		&cli.StringFlag{Name: "format", Usage: "yaml or json", Value: "yaml"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}},
	}
}
