package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"lyric_cloze_worksheet/generator"
	"lyric_cloze_worksheet/layout"
	"lyric_cloze_worksheet/publisher"
	"lyric_cloze_worksheet/server"
)

// CLI defines the command-line interface.
var CLI struct {
	Config  string `name:"config" short:"c" help:"Path to config (.json, .yaml)" type:"path"`
	Verbose bool   `name:"verbose" short:"v" help:"Enable info logs"`

	Serve ServeCmd `cmd:"" help:"Start the web server"`
	Make  MakeCmd  `cmd:"" help:"Generate a worksheet from a lyrics file"`
	Tier  TierCmd  `cmd:"" help:"Show the layout tier for processed lines"`
}

// ServeCmd starts the HTTP server.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides config.server_addr)"`
	Mock bool   `help:"Use the offline mock generator"`
}

// MakeCmd writes <name>.html and <name>.doc.
type MakeCmd struct {
	Lyrics       string `required:"" type:"existingfile" help:"Lyrics text file"`
	Title        string `required:"" help:"Song title"`
	Artist       string `help:"Artist name"`
	Cover        string `type:"existingfile" help:"Cover image (png, jpeg, gif, webp, bmp)"`
	Instructions string `type:"existingfile" help:"Markdown note printed under the header"`
	Out          string `default:"." type:"path" help:"Output directory"`
	Mock         bool   `help:"Use the offline mock generator"`
}

// TierCmd classifies one line per row of a text file.
type TierCmd struct {
	Lines string `arg:"" type:"existingfile" help:"File with one worksheet line per row"`
}

func (c *ServeCmd) Run(cfg publisher.Config, logger *log.Logger) error {
	agent, err := buildAgent(cfg, c.Mock, logger)
	if err != nil {
		return err
	}
	srv, err := server.New(agent, layout.NewResolver(cfg.StrictLayout, logger), cfg, logger)
	if err != nil {
		return err
	}
	listen := cfg.ServerAddr
	if c.Addr != "" {
		listen = c.Addr
	}
	if listen == "" {
		listen = ":8080"
	}
	logger.Printf("Starting web server on %s", listen)
	return http.ListenAndServe(listen, srv.Routes())
}

func (c *MakeCmd) Run(cfg publisher.Config, logger *log.Logger) error {
	agent, err := buildAgent(cfg, c.Mock, logger)
	if err != nil {
		return err
	}
	p, err := publisher.New(agent, layout.NewResolver(cfg.StrictLayout, logger), cfg.Verbose, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GenerationTimeout())
	defer cancel()
	logger.Printf("[cli] making worksheet title=%q lyrics=%s", c.Title, c.Lyrics)
	art, err := p.Publish(ctx, publisher.PublishParams{
		LyricsPath:       c.Lyrics,
		Title:            c.Title,
		Artist:           c.Artist,
		CoverPath:        c.Cover,
		InstructionsPath: c.Instructions,
		OutDir:           c.Out,
	})
	if err != nil {
		return fmt.Errorf("%s (%w)", generator.UserMessage(err), err)
	}
	logger.Printf("[cli] done tier=%s", art.Tier)
	fmt.Println(art.HTMLPath)
	fmt.Println(art.DocPath)
	return nil
}

func (c *TierCmd) Run() error {
	data, err := os.ReadFile(c.Lines)
	if err != nil {
		return err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = generator.NormalizeLine(line); line != "" {
			lines = append(lines, line)
		}
	}
	fmt.Printf("lines=%d units=%d tier=%s\n", len(lines), layout.Units(lines), layout.Classify(lines))
	return nil
}

func buildAgent(cfg publisher.Config, mock bool, logger *log.Logger) (*generator.Agent, error) {
	llm, err := buildLLM(cfg, mock)
	if err != nil {
		return nil, err
	}
	return generator.NewAgent(llm, cfg.Verbose, logger)
}

func buildLLM(cfg publisher.Config, mock bool) (generator.LLMClient, error) {
	if mock {
		return generator.MockLLM{}, nil
	}
	if cfg.LLM == nil || cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("llm config missing; please set llm.provider/model/api_key in config")
	}
	switch cfg.LLM.Provider {
	case "mock":
		return generator.MockLLM{}, nil
	case "openai":
		return generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.ResolvedAPIKey(),
			BaseURL:  cfg.LLM.BaseURL,
		})
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.ResolvedAPIKey(),
			BaseURL:  cfg.LLM.BaseURL,
		})
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("cloze"),
		kong.Description("Turn song lyrics into printable fill-in-the-blank listening worksheets"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	logger := log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)
	cfg, err := publisher.LoadConfig(CLI.Config)
	ctx.FatalIfErrorf(err)
	if CLI.Verbose {
		cfg.Verbose = true
	}

	ctx.FatalIfErrorf(ctx.Run(cfg, logger))
}
