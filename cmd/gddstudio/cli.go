package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/berkgokcam/gddstudio/internal/config"
	"github.com/berkgokcam/gddstudio/internal/errors"
	"github.com/berkgokcam/gddstudio/internal/export"
	"github.com/berkgokcam/gddstudio/internal/importer"
	"github.com/berkgokcam/gddstudio/internal/orchestrate"
	"github.com/berkgokcam/gddstudio/internal/registry"
	"github.com/berkgokcam/gddstudio/internal/store"
	"github.com/berkgokcam/gddstudio/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(s *store.Store, orch *orchestrate.Orchestrator, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "gddstudio",
		Usage:   "Game design documents with a local model",
		Version: Version,
		Commands: []*cli.Command{
			newCmd(s),
			showCmd(s),
			setCmd(s),
			instructCmd(s),
			generateCmd(orch),
			chatCmd(orch),
			clearChatCmd(s),
			diagramCmd(s, orch),
			modelsCmd(orch),
			exportCmd(s, cfg),
			importCmd(s),
			serveCmd(s, orch, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// newCmd creates the new command.
func newCmd(s *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Start a new project, replacing the current document",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "genres", Aliases: []string{"g"}, Usage: "Comma-separated genre tags"},
			&cli.StringFlag{Name: "platforms", Aliases: []string{"p"}, Usage: "Comma-separated target platforms"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Short pitch for the game"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("project name is required"))
			}

			project, err := s.CreateProject(
				strings.Join(c.Args().Slice(), " "),
				parseList(c.String("genres")),
				parseList(c.String("platforms")),
				c.String("description"),
			)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"project": project})
		},
	}
}

// showCmd creates the show command.
func showCmd(s *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show the project, one section, or the whole document",
		ArgsUsage: "[section-id]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "raw", Usage: "Print section markdown instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			project := s.Project()
			if project == nil {
				return outputError(errors.NewNotFound("project"))
			}

			if c.NArg() == 0 {
				return outputJSON(map[string]any{
					"project": project,
					"gdd":     s.GDD(),
					"filled":  s.FilledSections(),
				})
			}

			id := registry.SectionID(c.Args().First())
			content, filled := s.Section(id)
			if !registry.Valid(id) && !filled {
				return outputError(errors.NewNotFound("section " + string(id)))
			}
			if c.Bool("raw") {
				fmt.Println(content)
				return nil
			}
			return outputJSON(map[string]any{
				"id":      id,
				"content": content,
				"filled":  filled,
			})
		},
	}
}

// setCmd creates the set command (reads content from stdin).
func setCmd(s *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a section's content from stdin (empty input clears it)",
		ArgsUsage: "<section-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("section id is required"))
			}
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("content must be piped via stdin"))
			}

			content, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			id := registry.SectionID(c.Args().First())
			if err := s.SetSection(id, content); err != nil {
				return outputError(err)
			}
			_, filled := s.Section(id)
			return outputJSON(map[string]any{"id": id, "filled": filled})
		},
	}
}

// instructCmd creates the instruct command.
func instructCmd(s *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "instruct",
		Usage:     "Set the steering instruction for a section (empty clears it)",
		ArgsUsage: "<section-id> [text...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("section id is required"))
			}

			id := registry.SectionID(c.Args().First())
			text := strings.Join(c.Args().Tail(), " ")
			if err := s.SetInstruction(id, text); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"id": id, "instruction": text})
		},
	}
}

// generateCmd creates the generate command.
func generateCmd(orch *orchestrate.Orchestrator) *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate a section with the local model, streaming to stdout",
		ArgsUsage: "<section-id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress streamed output"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("section id is required"))
			}

			var onDelta orchestrate.DeltaFunc
			if !c.Bool("quiet") {
				onDelta = func(delta, total string) { fmt.Print(delta) }
			}

			id := registry.SectionID(c.Args().First())
			if _, err := orch.FillSection(context.Background(), id, onDelta); err != nil {
				return outputError(err)
			}
			if !c.Bool("quiet") {
				fmt.Println()
			}
			return nil
		},
	}
}

// chatCmd creates the chat command.
func chatCmd(orch *orchestrate.Orchestrator) *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Ask the design assistant a question grounded in the document",
		ArgsUsage: "<message...>",
		Action: func(c *cli.Context) error {
			message := strings.Join(c.Args().Slice(), " ")
			if message == "" && stdinHasData() {
				var err error
				if message, err = readStdin(); err != nil {
					return outputError(errors.NewInternal(err))
				}
			}

			_, err := orch.Chat(context.Background(), message, func(delta, total string) {
				fmt.Print(delta)
			})
			if err != nil {
				return outputError(err)
			}
			fmt.Println()
			return nil
		},
	}
}

// clearChatCmd creates the clear-chat command.
func clearChatCmd(s *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "clear-chat",
		Usage: "Clear the chat log",
		Action: func(c *cli.Context) error {
			s.ClearChat()
			return outputJSON(map[string]any{"cleared": true})
		},
	}
}

// diagramCmd creates the diagram command.
func diagramCmd(s *store.Store, orch *orchestrate.Orchestrator) *cli.Command {
	return &cli.Command{
		Name:  "diagram",
		Usage: "Generate a Mermaid diagram from the document",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: "flowchart", Usage: "flowchart|sequence|class|gantt|mindmap"},
			&cli.StringFlag{Name: "label", Aliases: []string{"l"}, Usage: "Display label"},
			&cli.StringFlag{Name: "instructions", Aliases: []string{"i"}, Usage: "Free-text steering"},
			&cli.StringFlag{Name: "modify", Aliases: []string{"m"}, Usage: "Existing diagram id to modify"},
		},
		Action: func(c *cli.Context) error {
			typ := registry.DiagramType(c.String("type"))
			existing := ""
			if modifyID := c.String("modify"); modifyID != "" {
				found := false
				for _, d := range s.Diagrams() {
					if d.ID == modifyID {
						existing = d.Source
						typ = d.Type
						found = true
						break
					}
				}
				if !found {
					return outputError(errors.NewNotFound("diagram " + modifyID))
				}
			}

			diagram, err := orch.Diagram(context.Background(), typ, c.String("label"), existing, c.String("instructions"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"diagram": diagram})
		},
	}
}

// modelsCmd creates the models command.
func modelsCmd(orch *orchestrate.Orchestrator) *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "List models installed on the local completion service",
		Action: func(c *cli.Context) error {
			models, err := orch.ListModels(context.Background())
			if err != nil {
				return outputError(err)
			}
			names := make([]string, 0, len(models))
			for _, m := range models {
				names = append(names, m.Name)
			}
			return outputJSON(map[string]any{"models": names})
		},
	}
}

// exportCmd creates the export command.
func exportCmd(s *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the document to a file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "markdown", Usage: "markdown|html|snapshot"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output path (defaults to the exports directory)"},
		},
		Action: func(c *cli.Context) error {
			project := s.Project()
			if project == nil {
				return outputError(errors.NewNotFound("project"))
			}

			var data []byte
			var ext string
			var err error
			switch c.String("format") {
			case "markdown":
				data, ext = export.Markdown(s.Snapshot()), "md"
			case "html":
				data, err = export.HTML(s.Snapshot())
				ext = "html"
			case "snapshot":
				data, err = export.Archive(s.Archive())
				ext = "json"
			default:
				return outputError(errors.NewInvalidRequest("unknown export format: " + c.String("format")))
			}
			if err != nil {
				return outputError(err)
			}

			path := c.String("out")
			if path == "" {
				path = export.Filename(project.Name, ext)
				if cfg != nil && cfg.ExportsDir != "" {
					path = filepath.Join(cfg.ExportsDir, path)
				}
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return outputJSON(map[string]any{"path": path, "bytes": len(data)})
		},
	}
}

// importCmd creates the import command.
func importCmd(s *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import a document from a file, replacing the current state",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "snapshot|markdown|html (sniffed when omitted)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("path is required"))
			}

			data, err := os.ReadFile(c.Args().First())
			if err != nil {
				return outputError(errors.NewInvalidRequest("unreadable file: " + c.Args().First()))
			}

			result, err := importer.Import(data, importer.Format(c.String("format")))
			if err != nil {
				return outputError(err)
			}
			if err := s.Replace(result.Project, result.GDD); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"project":  s.Project(),
				"sections": len(result.GDD),
			})
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(s *store.Store, orch *orchestrate.Orchestrator, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local HTTP JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8470, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(s, orch, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if sErr, ok := err.(*errors.StudioError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseList splits a comma-separated string into a slice.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
