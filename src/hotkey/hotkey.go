package hotkey

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// ErrAlreadyStarted is returned by Register after Start.
var ErrAlreadyStarted = errors.New("hotkey listener already started")

// combo is one parsed shortcut: an exact modifier set plus an optional main key.
type combo struct {
	label string
	mods  string // sorted, "+"-joined modifier names
	main  []uint16
	fire  func()
}

func parseCombo(spec string, fire func()) (combo, error) {
	keys := parseHotkey(spec)
	if len(keys) == 0 {
		return combo{}, fmt.Errorf("empty hotkey %q", spec)
	}
	c := combo{label: spec, fire: fire}
	var mods []string
	for _, k := range keys {
		if isModifier(k) {
			mods = append(mods, k)
			continue
		}
		if c.main != nil {
			return combo{}, fmt.Errorf("hotkey %q has more than one non-modifier key", spec)
		}
		codes := keyNameToRawcodes(k)
		if len(codes) == 0 {
			return combo{}, fmt.Errorf("hotkey %q: unknown key %q", spec, k)
		}
		c.main = codes
	}
	c.mods = modifierSet(mods)
	return c, nil
}

func modifierSet(names []string) string {
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return strings.Join(out, "+")
}

// matcher tracks held keys and reports which combos a key event triggers.
// A combo fires on the down transition of its last key, and only when the
// held modifiers are exactly the combo's modifiers.
type matcher struct {
	combos []combo
	held   map[uint16]bool
}

func newMatcher() *matcher { return &matcher{held: map[uint16]bool{}} }

func (m *matcher) keyDown(raw uint16) []func() {
	if m.held[raw] {
		return nil // auto-repeat
	}
	m.held[raw] = true

	var held []string
	for code := range m.held {
		if g, ok := modifierGroups[code]; ok {
			held = append(held, g)
		}
	}
	mods := modifierSet(held)
	_, rawIsModifier := modifierGroups[raw]

	var fired []func()
	for _, c := range m.combos {
		if c.mods != mods {
			continue
		}
		if c.main == nil {
			if rawIsModifier {
				fired = append(fired, c.fire)
			}
			continue
		}
		for _, code := range c.main {
			if code == raw {
				log.Printf("HOTKEY: %s detected", c.label)
				fired = append(fired, c.fire)
				break
			}
		}
	}
	return fired
}

func (m *matcher) keyUp(raw uint16) { delete(m.held, raw) }

// Listener dispatches global keyboard shortcuts captured by gohook.
// Callbacks run on the hook goroutine and must not block; post work to the
// UI event loop instead.
type Listener struct {
	mu      sync.Mutex
	m       *matcher
	started bool
}

func NewListener() *Listener { return &Listener{m: newMatcher()} }

// Register binds each hotkey in specs (for example "Ctrl+P") to fire.
func (l *Listener) Register(specs []string, fire func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return ErrAlreadyStarted
	}
	for _, spec := range specs {
		c, err := parseCombo(spec, fire)
		if err != nil {
			return err
		}
		l.m.combos = append(l.m.combos, c)
		log.Printf("HOTKEY: Registered %s", spec)
	}
	return nil
}

// handle feeds one hook event through the matcher and runs triggered callbacks.
// libuiohook reports physical presses as KeyHold and typed characters as
// KeyDown; both count as a press, deduplicated by the held set.
func (l *Listener) handle(kind uint8, raw uint16) {
	var fired []func()
	l.mu.Lock()
	switch kind {
	case gohook.KeyDown, gohook.KeyHold:
		fired = l.m.keyDown(raw)
	case gohook.KeyUp:
		l.m.keyUp(raw)
	}
	l.mu.Unlock()

	for _, fire := range fired {
		if fire != nil {
			fire()
		}
	}
}

// Start installs the global hook and processes events in a goroutine.
func (l *Listener) Start() {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}
		log.Printf("HOTKEY: Hook started")

		for ev := range evChan {
			l.handle(ev.Kind, ev.Rawcode)
		}
		log.Printf("HOTKEY: Event channel closed")
	}()
}

// Stop removes the global hook.
func (l *Listener) Stop() {
	l.mu.Lock()
	started := l.started
	l.mu.Unlock()
	if started {
		gohook.End()
	}
}
