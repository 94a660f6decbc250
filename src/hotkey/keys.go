package hotkey

import (
	"fmt"
	"log"
	"strings"
)

// Windows virtual key codes as reported by gohook's Rawcode.
var namedKeys = map[string][]uint16{
	// Modifier keys - both left and right variants
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"win":   {91, 92},   // VK_LWIN, VK_RWIN
	"cmd":   {91, 92},
	"super": {91, 92},

	"pause":      {19}, // VK_PAUSE
	"break":      {19},
	"print":      {44}, // VK_SNAPSHOT
	"prtsc":      {44},
	"scrolllock": {145},
	"space":      {32},
	"enter":      {13},
	"return":     {13},
	"esc":        {27},
	"escape":     {27},
	"tab":        {9},
	"backspace":  {8},
	"delete":     {46},
	"del":        {46},
	"insert":     {45},
	"ins":        {45},
	"home":       {36},
	"end":        {35},
	"pageup":     {33},
	"pgup":       {33},
	"pagedown":   {34},
	"pgdn":       {34},
	"left":       {37},
	"up":         {38},
	"right":      {39},
	"down":       {40},
}

// modifierGroups maps every modifier rawcode to its normalized name.
var modifierGroups = map[uint16]string{
	162: "ctrl", 163: "ctrl",
	164: "alt", 165: "alt",
	160: "shift", 161: "shift",
	91: "cmd", 92: "cmd",
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		namedKeys[string(c)] = []uint16{uint16(65 + c - 'a')}
	}
	for d := '0'; d <= '9'; d++ {
		namedKeys[string(d)] = []uint16{uint16(48 + d - '0')}
	}
	for n := 1; n <= 24; n++ {
		namedKeys[fmt.Sprintf("f%d", n)] = []uint16{uint16(111 + n)} // VK_F1 = 112
	}
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	var keys []string

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			keys = append(keys, "ctrl")
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}

	return keys
}

// keyNameToRawcodes maps a key name to its Windows virtual key code rawcodes.
// Modifiers return both left and right variants.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if codes, ok := namedKeys[keyName]; ok {
		return codes
	}
	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}

func isModifier(name string) bool {
	switch name {
	case "ctrl", "alt", "shift", "cmd":
		return true
	}
	return false
}
