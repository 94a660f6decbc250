//go:build windows

package gui

import (
	"log"
	"sync"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
)

const (
	promptClassName = "ScreenRegionCapturePrompt"
	promptWidth     = 420
	promptHeight    = 170
	idPromptEdit    = 1001
)

// promptState is the single modal prompt in flight. Only touched on the UI thread.
type promptState struct {
	hwnd   win.HWND
	edit   win.HWND
	done   bool
	ok     bool
	result string
}

var (
	activePrompt    *promptState
	promptClassOnce sync.Once
	promptClassErr  error
)

func registerPromptClass() error {
	promptClassOnce.Do(func() {
		wndClass := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			LpfnWndProc:   syscall.NewCallback(promptWndProc),
			HInstance:     win.GetModuleHandle(nil),
			HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_ARROW)),
			HbrBackground: win.HBRUSH(win.COLOR_BTNFACE + 1),
			LpszClassName: syscall.StringToUTF16Ptr(promptClassName),
		}
		if atom := win.RegisterClassEx(&wndClass); atom == 0 {
			promptClassErr = syscall.GetLastError()
			if promptClassErr == nil {
				promptClassErr = ErrUnsupported
			}
		}
	})
	return promptClassErr
}

// AskText shows a modal single-line text dialog and blocks until the user
// confirms (ok=true) or cancels. Messages keep flowing while it is open.
func (Prompter) AskText(title, label string) (string, bool) {
	if activePrompt != nil {
		log.Printf("PROMPT: Dialog already open")
		return "", false
	}
	if err := registerPromptClass(); err != nil {
		log.Printf("PROMPT: Failed to register dialog class: %v", err)
		return "", false
	}

	x := (win.GetSystemMetrics(win.SM_CXSCREEN) - promptWidth) / 2
	y := (win.GetSystemMetrics(win.SM_CYSCREEN) - promptHeight) / 2
	hwnd := win.CreateWindowEx(
		win.WS_EX_DLGMODALFRAME|win.WS_EX_TOPMOST,
		syscall.StringToUTF16Ptr(promptClassName),
		syscall.StringToUTF16Ptr(title),
		win.WS_POPUP|win.WS_CAPTION|win.WS_SYSMENU,
		x, y, promptWidth, promptHeight,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		log.Printf("PROMPT: Failed to create dialog window")
		return "", false
	}

	st := &promptState{hwnd: hwnd}
	activePrompt = st
	defer func() { activePrompt = nil }()

	font := win.HFONT(win.GetStockObject(win.DEFAULT_GUI_FONT))
	child := func(class, text string, style uint32, exStyle uint32, x, y, w, h int32, id int) win.HWND {
		c := win.CreateWindowEx(
			exStyle,
			syscall.StringToUTF16Ptr(class),
			syscall.StringToUTF16Ptr(text),
			win.WS_CHILD|win.WS_VISIBLE|style,
			x, y, w, h,
			hwnd, win.HMENU(id), win.GetModuleHandle(nil), nil,
		)
		win.SendMessage(c, win.WM_SETFONT, uintptr(font), 1)
		return c
	}
	child("STATIC", label, 0, 0, 12, 12, 380, 20, 0)
	st.edit = child("EDIT", "", win.WS_TABSTOP|win.ES_AUTOHSCROLL, win.WS_EX_CLIENTEDGE, 12, 40, 380, 24, idPromptEdit)
	child("BUTTON", "OK", win.WS_TABSTOP|win.BS_DEFPUSHBUTTON, 0, 212, 84, 86, 28, win.IDOK)
	child("BUTTON", "Cancel", win.WS_TABSTOP|win.BS_PUSHBUTTON, 0, 306, 84, 86, 28, win.IDCANCEL)

	disabled := disableAppWindows()

	win.ShowWindow(hwnd, win.SW_SHOW)
	win.SetForegroundWindow(hwnd)
	win.SetFocus(st.edit)

	var msg win.MSG
	for !st.done {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 {
			// Hand WM_QUIT back to the outer pump.
			win.PostQuitMessage(int32(msg.WParam))
			st.done, st.ok = true, false
			break
		}
		if ret == -1 {
			log.Printf("PROMPT: GetMessage error")
			st.done, st.ok = true, false
			break
		}
		if win.IsDialogMessage(hwnd, &msg) {
			continue
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}

	// Re-enable before destroying so activation returns to our windows.
	enableWindows(disabled)
	if st.hwnd != 0 {
		win.DestroyWindow(st.hwnd)
	}
	return st.result, st.ok
}

// disableAppWindows disables the overlay surfaces and control windows so the
// prompt is modal to them, and returns the ones it changed.
func disableAppWindows() []win.HWND {
	var changed []win.HWND
	disable := func(h win.HWND) {
		// EnableWindow reports whether the window was already disabled.
		if !win.EnableWindow(h, false) {
			changed = append(changed, h)
		}
	}
	for h := range surfaces {
		disable(h)
	}
	for h := range controlWindows {
		disable(h)
	}
	return changed
}

func enableWindows(hwnds []win.HWND) {
	for _, h := range hwnds {
		win.EnableWindow(h, true)
	}
}

func windowText(hwnd win.HWND) string {
	n := win.SendMessage(hwnd, win.WM_GETTEXTLENGTH, 0, 0)
	buf := make([]uint16, n+1)
	win.SendMessage(hwnd, win.WM_GETTEXT, uintptr(len(buf)), uintptr(unsafe.Pointer(&buf[0])))
	return syscall.UTF16ToString(buf)
}

func promptWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	st := activePrompt
	if st == nil || st.hwnd != hwnd {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_COMMAND:
		switch win.LOWORD(uint32(wParam)) {
		case win.IDOK:
			st.result = windowText(st.edit)
			st.done, st.ok = true, true
			return 0
		case win.IDCANCEL:
			st.done, st.ok = true, false
			return 0
		}

	case win.WM_CLOSE:
		st.done, st.ok = true, false
		return 0

	case win.WM_DESTROY:
		st.hwnd = 0
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}
