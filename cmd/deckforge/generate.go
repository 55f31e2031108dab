package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/deckforge/internal/artifact"
	"git.home.luguber.info/inful/deckforge/internal/client"
	"git.home.luguber.info/inful/deckforge/internal/config"
	"git.home.luguber.info/inful/deckforge/internal/deck"
	"git.home.luguber.info/inful/deckforge/internal/pipeline"
	"git.home.luguber.info/inful/deckforge/internal/preview"

	"github.com/google/uuid"
)

// runGenerate produces a deck either against a remote deckforge server
// or fully in-process, then prints a preview of the result.
func runGenerate(cfg *config.Config, serverURL, topic, theme string, slides int) error {
	var d *deck.Deck
	var err error
	if serverURL != "" {
		d, err = generateRemote(cfg, serverURL, topic, theme, slides)
	} else {
		d, err = generateLocal(cfg, topic, theme, slides)
	}
	if err != nil {
		return err
	}
	return printPreview(d)
}

// generateRemote streams a generation from a running server, tracking
// progress from the event stream.
func generateRemote(cfg *config.Config, serverURL, topic, theme string, slides int) (*deck.Deck, error) {
	body, err := json.Marshal(map[string]any{
		"topic":      topic,
		"theme":      theme,
		"num_slides": slides,
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(serverURL, "/") + "/api/generate/stream"
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect to server: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server rejected request: %s", resp.Status)
	}

	consumer := client.NewConsumer(cfg.Client.RunTimeout, cfg.Client.StallWindow)
	consumer.OnEvent = func(ev pipeline.Event) {
		if ev.Message != "" && ev.Type != pipeline.EventHeartbeat {
			fmt.Println(ev.Message)
		}
	}
	result, err := consumer.Consume(context.Background(), resp.Body)
	if err != nil {
		return nil, err
	}
	if result.DownloadURL != "" {
		fmt.Println("artifact:", strings.TrimRight(serverURL, "/")+result.DownloadURL)
	}
	return result.Deck, nil
}

// generateLocal runs the pipeline in-process without a server.
func generateLocal(cfg *config.Config, topic, theme string, slides int) (*deck.Deck, error) {
	llmClient := newLLMClient(cfg)
	graph, err := pipeline.BuildDeckGraph(llmClient)
	if err != nil {
		return nil, err
	}
	assembler, err := artifact.NewJSONAssembler(cfg.Server.OutputDir)
	if err != nil {
		return nil, err
	}
	orch := pipeline.NewOrchestrator(graph, assembler,
		pipeline.WithStageTimeout(cfg.Pipeline.StageTimeout))

	req, err := pipeline.Request{Topic: topic, ThemeKey: theme, NumSlides: slides}.Normalize()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Client.RunTimeout)
	defer cancel()

	var terminal pipeline.Event
	for ev := range orch.Run(ctx, uuid.NewString(), req) {
		if ev.Message != "" {
			fmt.Println(ev.Message)
		}
		if ev.Terminal() {
			terminal = ev
		}
	}
	if terminal.Type != pipeline.EventCompleted {
		return nil, fmt.Errorf("generation failed: %s", terminal.Message)
	}
	fmt.Println("artifact:", terminal.Filename)
	return terminal.Deck, nil
}

// printPreview loads the deck into the preview state and walks it once.
func printPreview(d *deck.Deck) error {
	if d == nil {
		return fmt.Errorf("no deck produced")
	}
	m := preview.New()
	if err := m.Load(d); err != nil {
		return err
	}

	colors := m.Colors()
	fmt.Printf("\n%s (%d slides, primary %s)\n", d.Topic, len(d.Slides), colors.Primary)
	for range d.Slides {
		i, slide := m.Current()
		fmt.Printf("  %2d. [%s] %s\n", i+1, slide.SlideType, slide.Title)
		m.Next()
	}
	return nil
}
