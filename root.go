package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"clipforge/assets"
	"clipforge/compose"
	"clipforge/config"
	"clipforge/encoder"
	"clipforge/pipeline"
	"clipforge/provider"
	"clipforge/resolve"
	"clipforge/script"
	"clipforge/speech"
	"clipforge/visual"
)

var (
	configPath string
	verbose    bool

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "clipforge",
	Short: "Generate short vertical videos from a text topic",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine; the environment may carry the keys.
		_ = godotenv.Load()
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
	SilenceUsage: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Run the full pipeline for a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetFloat64("duration")
		keep, _ := cmd.Flags().GetBool("keep-artifacts")
		mode, _ := cmd.Flags().GetString("mode")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if keep {
			cfg.Pipeline.KeepArtifacts = true
		}
		if mode != "" {
			cfg.Visual.Mode = mode
		}

		orch, err := buildOrchestrator(cfg)
		if err != nil {
			return err
		}
		out, err := orch.Run(cmd.Context(), args[0], duration)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Manage theme asset sets",
}

var assetsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the configured theme's backgrounds, characters and props",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if theme, _ := cmd.Flags().GetString("theme"); theme != "" {
			cfg.Assets.Theme = theme
		}
		if style, _ := cmd.Flags().GetString("style"); style != "" {
			cfg.Assets.Style = style
		}

		enc := encoder.New(cfg.Video, log)
		source := visual.NewPollinations(cfg.Visual, enc, enc, log)
		gen := assets.NewGenerator(source, log)
		manifest, err := gen.Generate(cmd.Context(), cfg.Assets.Theme, cfg.Assets.Style, cfg.Assets.Dir)
		if err != nil {
			return err
		}
		for category, paths := range manifest.Assets {
			fmt.Printf("%s: %d assets\n", category, len(paths))
		}
		return nil
	},
}

var assetsPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "List the generated asset set and whether each file exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		manifest, present, err := assets.Preview(cfg.Assets.Dir)
		if err != nil {
			return fmt.Errorf("no asset set in %s (run 'clipforge assets generate' first): %w", cfg.Assets.Dir, err)
		}
		fmt.Printf("theme: %s (style: %s)\n%s\n\n", manifest.Theme, manifest.Style, manifest.Description)
		for category, paths := range manifest.Assets {
			fmt.Printf("%s:\n", category)
			for _, rel := range paths {
				status := "missing"
				if present[rel] {
					status = "ok"
				}
				fmt.Printf("  %-40s %s\n", rel, status)
			}
		}
		return nil
	},
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List providers per capability and whether each is usable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		creds := config.CredentialsFromEnv()
		enc := encoder.New(cfg.Video, log)

		list := func(capability provider.Capability, provs []provider.Provider) {
			fmt.Printf("%s:\n", capability)
			for _, p := range provs {
				status := "not configured"
				if p.Configured() {
					status = "ready"
				}
				fmt.Printf("  %-14s %s\n", p.Name(), status)
			}
		}
		list(provider.CapScript, []provider.Provider{
			script.NewGroq(cfg.Script, creds, log),
			script.NewOpenAI(cfg.Script, creds, log),
			script.NewPlaceholder(log),
		})
		list(provider.CapVisual, []provider.Provider{
			visual.NewReplicate(cfg.Visual, creds, enc, log),
			visual.NewPollinations(cfg.Visual, enc, enc, log),
			visual.NewPlaceholder(cfg.Video, cfg.Visual, enc, enc, log),
		})
		list(provider.CapSpeech, []provider.Provider{
			speech.NewOpenAI(cfg.Speech, creds, enc, log),
			speech.NewEdgeTTS(cfg.Speech, enc, log),
			speech.NewPlaceholder(enc, enc, log),
		})
		return nil
	},
}

// buildOrchestrator wires the configured provider preference lists into
// per-capability resolver chains. Script resolution surfaces failures;
// visuals and speech demote to their placeholders so a run always
// finishes.
func buildOrchestrator(cfg *config.Config) (*pipeline.Orchestrator, error) {
	creds := config.CredentialsFromEnv()
	enc := encoder.New(cfg.Video, log)

	scriptChain := resolve.NewChain[provider.ScriptProvider](provider.CapScript, resolve.SurfaceErrors, log)
	for _, name := range cfg.Script.Providers {
		switch name {
		case "groq":
			scriptChain.Add(script.NewGroq(cfg.Script, creds, log))
		case "openai":
			scriptChain.Add(script.NewOpenAI(cfg.Script, creds, log))
		case "placeholder":
			scriptChain.WithPlaceholder(script.NewPlaceholder(log))
		default:
			return nil, fmt.Errorf("unknown script provider %q", name)
		}
	}

	visualChain := resolve.NewChain[provider.VisualProvider](provider.CapVisual, resolve.UsePlaceholder, log)
	for _, name := range cfg.Visual.Providers {
		switch name {
		case "replicate":
			visualChain.Add(visual.NewReplicate(cfg.Visual, creds, enc, log))
		case "pollinations":
			visualChain.Add(visual.NewPollinations(cfg.Visual, enc, enc, log))
		case "placeholder":
			visualChain.WithPlaceholder(visual.NewPlaceholder(cfg.Video, cfg.Visual, enc, enc, log))
		default:
			return nil, fmt.Errorf("unknown visual provider %q", name)
		}
	}

	speechChain := resolve.NewChain[provider.SpeechProvider](provider.CapSpeech, resolve.UsePlaceholder, log)
	for _, name := range cfg.Speech.Providers {
		switch name {
		case "openai":
			speechChain.Add(speech.NewOpenAI(cfg.Speech, creds, enc, log))
		case "edge-tts":
			speechChain.Add(speech.NewEdgeTTS(cfg.Speech, enc, log))
		case "placeholder":
			speechChain.WithPlaceholder(speech.NewPlaceholder(enc, enc, log))
		default:
			return nil, fmt.Errorf("unknown speech provider %q", name)
		}
	}

	comp, err := compose.New(cfg.Video, log)
	if err != nil {
		return nil, fmt.Errorf("build compositor: %w", err)
	}
	return pipeline.New(cfg, scriptChain, visualChain, speechChain, enc, comp, log), nil
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (defaults apply when omitted)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	generateCmd.Flags().Float64("duration", 60, "target video duration in seconds")
	generateCmd.Flags().Bool("keep-artifacts", false, "keep intermediate artifacts after a successful run")
	generateCmd.Flags().String("mode", "", "visual assembly mode (clips or frames)")

	assetsGenerateCmd.Flags().String("theme", "", "theme to generate (overrides config)")
	assetsGenerateCmd.Flags().String("style", "", "style modifier (overrides config)")

	assetsCmd.AddCommand(assetsGenerateCmd, assetsPreviewCmd)
	rootCmd.AddCommand(generateCmd, assetsCmd, providersCmd)
}
