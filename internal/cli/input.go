// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bastiangx/keyserve/internal/logger"
	"github.com/bastiangx/keyserve/internal/utils"
	"github.com/bastiangx/keyserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var wordStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})

// InputHandler reads words from stdin and prints the ranked predictions for
// each one. Lines starting with ':' are commands.
type InputHandler struct {
	completer    suggest.ICompleter
	suggestLimit int
	showDetails  bool
	requestCount int
	logger       *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(completer suggest.ICompleter, limit int, showDetails bool) *InputHandler {
	return &InputHandler{
		completer:    completer,
		suggestLimit: limit,
		showDetails:  showDetails,
		logger:       logger.Default(""),
	}
}

// Start begins the interface loop on stdin.
func (h *InputHandler) Start() error {
	h.logger.Print("keyserve CLI [BETA]")
	h.logger.Print("type a word and press Enter to see predictions, :stats for counters, :cache [prefix] for cached lookups (Ctrl+C to exit):")
	return h.Run(os.Stdin)
}

// Run processes every line of r until EOF.
func (h *InputHandler) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == ":stats":
			h.printStats()
		case line == ":cache" || strings.HasPrefix(line, ":cache "):
			h.printCached(strings.TrimSpace(strings.TrimPrefix(line, ":cache")))
		default:
			h.handleInput(line)
		}
	}
	return scanner.Err()
}

// handleInput predicts one typed word and prints the results.
func (h *InputHandler) handleInput(word string) {
	h.requestCount++
	caps := utils.Capitals(word)

	start := time.Now()
	suggestions := h.completer.Complete([]byte(word), h.suggestLimit)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for '%s'", elapsed, word)

	if len(suggestions) == 0 {
		h.logger.Warnf("No predictions for '%s'", word)
		return
	}

	h.logger.Printf("Found %d predictions for '%s':", len(suggestions), word)
	for i, s := range suggestions {
		styled := wordStyle.Render(caps.Apply(s.Word))
		if h.showDetails {
			h.logger.Printf("%2d. %-30s (dist: %d, freq: %3d)", i+1, styled, s.Distance, s.Freq)
		} else {
			h.logger.Printf("%2d. %s", i+1, styled)
		}
	}
}

func (h *InputHandler) printStats() {
	stats := h.completer.Stats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h.logger.Print("stats", "cliRequests", h.requestCount)
	for _, k := range keys {
		h.logger.Print(fmt.Sprintf("  %-14s %d", k, stats[k]))
	}
}

func (h *InputHandler) printCached(prefix string) {
	keys := h.completer.Cached(prefix)
	sort.Strings(keys)
	h.logger.Print("cached lookups", "prefix", prefix, "count", len(keys), "keys", strings.Join(keys, " "))
}
