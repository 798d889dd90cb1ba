/*
Package ipc implements a msgpack request/response server over the
spec.md §6.3 consumer API, adapted from the teacher's
pkg/server/server.go: a decode-from-stdin loop, a mutex-guarded atomic
stdout writer, and periodic housekeeping every N requests — reload the
on-disk config instead of the teacher's own dictionary-chunk reload.

Message shapes are this core's consumer API instead of word completion:

	{"op": "check",     "id": "...", "text": "...", "cursor": 3}
	{"op": "suggest",   "id": "...", "word": "...", "max": 10}
	{"op": "soundfold", "id": "...", "lang": "en", "word": "..."}
	{"op": "dump",      "id": "...", "pattern": "..."}
	{"op": "load",      "id": "...", "name": "en", "path": "spell/en.utf-8.spl"}
*/
package ipc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/gospell/internal/logger"
	"github.com/bastiangx/gospell/pkg/config"
	"github.com/bastiangx/gospell/pkg/engine"
	"github.com/bastiangx/gospell/pkg/langdata"
)

var log = logger.New("ipc")

// CheckRequest asks whether a word at cursor in text is correctly
// spelled.
type CheckRequest struct {
	ID     string `msgpack:"id"`
	Text   string `msgpack:"text"`
	Cursor int    `msgpack:"cursor"`
}

// CheckResponse reports the result class and how many bytes of Text
// the check consumed.
type CheckResponse struct {
	ID       string `msgpack:"id"`
	Class    string `msgpack:"class"`
	Consumed int    `msgpack:"consumed"`
}

// SuggestRequest asks for corrections to Word.
type SuggestRequest struct {
	ID   string `msgpack:"id"`
	Word string `msgpack:"word"`
	Max  int    `msgpack:"max,omitempty"`
}

// SuggestItem is one returned correction.
type SuggestItem struct {
	Word  string `msgpack:"word"`
	Score int    `msgpack:"score"`
}

// SuggestResponse carries the ranked correction list.
type SuggestResponse struct {
	ID          string        `msgpack:"id"`
	Suggestions []SuggestItem `msgpack:"suggestions"`
}

// SoundFoldRequest asks for Word's sound-a-like fold under Lang.
type SoundFoldRequest struct {
	ID   string `msgpack:"id"`
	Lang string `msgpack:"lang"`
	Word string `msgpack:"word"`
}

// SoundFoldResponse carries the folded form, empty if Lang has no
// sound-a-like folder loaded.
type SoundFoldResponse struct {
	ID     string `msgpack:"id"`
	Folded string `msgpack:"folded"`
}

// DumpRequest asks for every word matching Pattern (a plain substring
// filter; empty means every word).
type DumpRequest struct {
	ID      string `msgpack:"id"`
	Pattern string `msgpack:"pattern,omitempty"`
}

// DumpResponse carries the matched words. Large dictionaries can make
// this a very large response; callers needing incremental delivery
// should page via repeated Pattern-scoped requests.
type DumpResponse struct {
	ID    string   `msgpack:"id"`
	Words []string `msgpack:"words"`
}

// LoadRequest asks the server to (re)load a language.
type LoadRequest struct {
	ID   string `msgpack:"id"`
	Name string `msgpack:"name"`
	Path string `msgpack:"path"`
}

// StatusResponse is the generic ok/error envelope for requests that
// don't carry their own payload (load, and the error reply to an
// unknown op).
type StatusResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Error  string `msgpack:"error,omitempty"`
}

// Server serves the consumer API over msgpack-encoded stdin/stdout.
type Server struct {
	eng        *engine.Engine
	cfg        *config.Config
	configPath string

	decoder      *msgpack.Decoder
	writeMutex   sync.Mutex
	requestCount int64
}

// NewServer wires eng to a fresh msgpack decoder over os.Stdin.
func NewServer(eng *engine.Engine, cfg *config.Config, configPath string) *Server {
	return &Server{
		eng:        eng,
		cfg:        cfg,
		configPath: configPath,
		decoder:    msgpack.NewDecoder(os.Stdin),
	}
}

// reloadConfig reloads the TOML config, logging and keeping the prior
// value on failure rather than aborting the server.
func (s *Server) reloadConfig() {
	newCfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		log.Warnf("failed to reload config, keeping current: %v", err)
		return
	}
	s.cfg = newCfg
	log.Debugf("config reloaded from: %s", s.configPath)
}

// Start begins the decode-dispatch-respond loop until stdin closes.
func (s *Server) Start() error {
	log.Debug("starting msgpack IPC server")
	for {
		if err := s.processOne(); err != nil {
			if err == io.EOF {
				log.Debug("client disconnected")
				return nil
			}
			log.Warnf("request error: %v", err)
			continue
		}
	}
}

func (s *Server) processOne() error {
	s.requestCount++
	if s.requestCount%100 == 0 {
		s.reloadConfig()
	}

	var raw map[string]interface{}
	if err := s.decoder.Decode(&raw); err != nil {
		return err
	}
	op, _ := raw["op"].(string)
	id, _ := raw["id"].(string)

	switch op {
	case "check":
		return s.handleCheck(id, raw)
	case "suggest":
		return s.handleSuggest(id, raw)
	case "soundfold":
		return s.handleSoundFold(id, raw)
	case "dump":
		return s.handleDump(id, raw)
	case "load":
		return s.handleLoad(id, raw)
	default:
		return s.send(&StatusResponse{ID: id, Status: "error", Error: fmt.Sprintf("unknown op %q", op)})
	}
}

func (s *Server) handleCheck(id string, raw map[string]interface{}) error {
	text, _ := raw["text"].(string)
	cursor := intField(raw, "cursor")
	class, n := s.eng.CheckWord([]byte(text), cursor)
	return s.send(&CheckResponse{ID: id, Class: class.String(), Consumed: n})
}

func (s *Server) handleSuggest(id string, raw map[string]interface{}) error {
	word, _ := raw["word"].(string)
	max := intField(raw, "max")
	if max <= 0 {
		max = 10
	}
	sugs := s.eng.Suggestions([]byte(word), max)
	items := make([]SuggestItem, len(sugs))
	for i, sg := range sugs {
		items[i] = SuggestItem{Word: sg.Word, Score: sg.Score}
	}
	return s.send(&SuggestResponse{ID: id, Suggestions: items})
}

func (s *Server) handleSoundFold(id string, raw map[string]interface{}) error {
	lang, _ := raw["lang"].(string)
	word, _ := raw["word"].(string)
	folded := s.eng.SoundFold(lang, []byte(word))
	return s.send(&SoundFoldResponse{ID: id, Folded: folded})
}

func (s *Server) handleDump(id string, raw map[string]interface{}) error {
	pattern, _ := raw["pattern"].(string)
	var words []string
	s.eng.DumpWords(pattern, func(word string, _ langdata.WordMeta) {
		words = append(words, word)
	})
	return s.send(&DumpResponse{ID: id, Words: words})
}

func (s *Server) handleLoad(id string, raw map[string]interface{}) error {
	name, _ := raw["name"].(string)
	path, _ := raw["path"].(string)
	if err := s.eng.LoadLanguage(name, path); err != nil {
		return s.send(&StatusResponse{ID: id, Status: "error", Error: err.Error()})
	}
	return s.send(&StatusResponse{ID: id, Status: "ok"})
}

func (s *Server) send(response any) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(response); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func intField(raw map[string]interface{}, key string) int {
	switch v := raw[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
