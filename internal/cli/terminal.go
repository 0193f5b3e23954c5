package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bastiangx/keyserve/internal/logger"
	"github.com/bastiangx/keyserve/pkg/layout"
	"github.com/bastiangx/keyserve/pkg/session"
	"github.com/charmbracelet/log"
)

// BackspaceRune stands for the backspace key in replayed lines.
const BackspaceRune = '<'

// TypingHandler replays lines as keystrokes on a session, touching the
// center of each key of its layout. '<' is backspace and ' ' is space.
// ":pick N" selects the Nth candidate of the current list.
type TypingHandler struct {
	session    *session.Session
	centers    map[int][2]float64
	candidates [][2]string
	logger     *log.Logger
}

// NewTypingHandler creates a handler with an Empty session using params for
// both adjacency and touch positions. SetLanguage must be called before Run.
func NewTypingHandler(opts session.Options, params layout.Params) *TypingHandler {
	h := &TypingHandler{
		centers: make(map[int][2]float64, len(params.Keys)),
		logger:  logger.Default(""),
	}
	for _, k := range params.Keys {
		h.centers[k.Code] = [2]float64{k.X + k.Width/2, k.Y + k.Height/2}
	}
	h.session = session.New(h, opts)
	h.session.SetLayoutParams(params)
	return h
}

// SetLanguage loads the dictionary buffer for lang.
func (h *TypingHandler) SetLanguage(lang string, buf []byte) error {
	return h.session.SetLanguage(lang, buf)
}

// Start replays stdin.
func (h *TypingHandler) Start() error {
	h.logger.Print("keyserve typing mode [BETA]")
	h.logger.Print("type keystrokes and press Enter; '<' is backspace, ':pick N' selects (Ctrl+C to exit):")
	return h.Run(os.Stdin)
}

// Run replays every line of r until EOF.
func (h *TypingHandler) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if pick, ok := strings.CutPrefix(line, ":pick "); ok {
			if err := h.pick(strings.TrimSpace(pick)); err != nil {
				h.logger.Error(err)
			}
			continue
		}
		if err := h.replay(line); err != nil {
			return err
		}
		h.printCandidates()
	}
	return scanner.Err()
}

func (h *TypingHandler) replay(line string) error {
	for _, r := range line {
		code := int(r)
		if r == BackspaceRune {
			code = layout.Backspace
		}
		pos := h.centers[code]
		if err := h.session.Key(code, pos[0], pos[1]); err != nil {
			return err
		}
	}
	return nil
}

func (h *TypingHandler) pick(arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(h.candidates) {
		return fmt.Errorf("no candidate %q among %d", arg, len(h.candidates))
	}
	chosen := h.candidates[n-1]
	return h.session.Select(chosen[0], chosen[1])
}

func (h *TypingHandler) printCandidates() {
	if len(h.candidates) == 0 {
		h.logger.Printf("[%s] no candidates", h.session.Word())
		return
	}
	words := make([]string, len(h.candidates))
	for i, c := range h.candidates {
		words[i] = fmt.Sprintf("%d:%s", i+1, wordStyle.Render(c[0]))
	}
	h.logger.Printf("[%s] %s", h.session.Word(), strings.Join(words, "  "))
}

// SendCandidates implements session.Host.
func (h *TypingHandler) SendCandidates(pairs [][2]string) {
	h.candidates = pairs
}

// SendString implements session.Host. Backspaces are shown as '<'.
func (h *TypingHandler) SendString(s string) {
	h.logger.Printf("type %q", strings.ReplaceAll(s, "\b", string(BackspaceRune)))
}

// Log implements session.Host.
func (h *TypingHandler) Log(msg string) {
	log.Debug(msg)
}
