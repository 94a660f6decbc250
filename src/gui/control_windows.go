//go:build windows

package gui

import (
	"fmt"
	"log"
	"sync"
	"syscall"
	"unsafe"

	"github.com/lxn/win"

	"screen-region-capture/src/control"
)

const (
	controlClassName = "ScreenRegionCaptureControl"
	controlWidth     = 400
	controlHeight    = 240
	buttonHeight     = 36
	buttonGap        = 8
	idFirstButton    = 100
)

// ControlWindow is the small always-on-top window with one button per action.
type ControlWindow struct {
	hwnd     win.HWND
	dispatch func(control.Action)
}

var (
	controlWindows   = map[win.HWND]*ControlWindow{}
	controlClassOnce sync.Once
	controlClassErr  error
)

func registerControlClass() error {
	controlClassOnce.Do(func() {
		wndClass := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			LpfnWndProc:   syscall.NewCallback(controlWndProc),
			HInstance:     win.GetModuleHandle(nil),
			HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_ARROW)),
			HbrBackground: win.HBRUSH(win.COLOR_BTNFACE + 1),
			LpszClassName: syscall.StringToUTF16Ptr(controlClassName),
		}
		if atom := win.RegisterClassEx(&wndClass); atom == 0 {
			controlClassErr = fmt.Errorf("failed to register window class %s", controlClassName)
		}
	})
	return controlClassErr
}

// NewControlWindow creates and shows the control window. Button clicks and
// closing the window are reported through dispatch.
func NewControlWindow(dispatch func(control.Action)) (*ControlWindow, error) {
	if err := registerControlClass(); err != nil {
		return nil, err
	}

	hwnd := win.CreateWindowEx(
		win.WS_EX_TOPMOST,
		syscall.StringToUTF16Ptr(controlClassName),
		syscall.StringToUTF16Ptr(control.Title),
		win.WS_OVERLAPPED|win.WS_CAPTION|win.WS_SYSMENU|win.WS_MINIMIZEBOX,
		win.CW_USEDEFAULT, win.CW_USEDEFAULT, controlWidth, controlHeight,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		return nil, fmt.Errorf("failed to create control window")
	}
	w := &ControlWindow{hwnd: hwnd, dispatch: dispatch}
	controlWindows[hwnd] = w

	font := win.HFONT(win.GetStockObject(win.DEFAULT_GUI_FONT))
	var rc win.RECT
	win.GetClientRect(hwnd, &rc)
	width := rc.Right - rc.Left - 2*buttonGap
	for i, a := range control.Actions {
		y := int32(buttonGap + i*(buttonHeight+buttonGap))
		b := win.CreateWindowEx(
			0,
			syscall.StringToUTF16Ptr("BUTTON"),
			syscall.StringToUTF16Ptr(a.Label()),
			win.WS_CHILD|win.WS_VISIBLE|win.WS_TABSTOP|win.BS_PUSHBUTTON,
			buttonGap, y, width, buttonHeight,
			hwnd, win.HMENU(idFirstButton+int(a)), win.GetModuleHandle(nil), nil,
		)
		win.SendMessage(b, win.WM_SETFONT, uintptr(font), 1)
	}

	win.ShowWindow(hwnd, win.SW_SHOW)
	win.UpdateWindow(hwnd)
	log.Printf("CONTROL: Window created, hwnd: %v", hwnd)
	return w, nil
}

// Activate raises the control window and gives it focus.
func (w *ControlWindow) Activate() {
	if w == nil || w.hwnd == 0 {
		return
	}
	win.ShowWindow(w.hwnd, win.SW_SHOW)
	win.SetForegroundWindow(w.hwnd)
	win.SetFocus(w.hwnd)
}

func (w *ControlWindow) Close() error {
	if w.hwnd != 0 {
		win.DestroyWindow(w.hwnd)
		w.hwnd = 0
	}
	return nil
}

func controlWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	w := controlWindows[hwnd]
	if w == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_COMMAND:
		if win.HIWORD(uint32(wParam)) == win.BN_CLICKED {
			id := int(win.LOWORD(uint32(wParam)))
			a := control.Action(id - idFirstButton)
			if id >= idFirstButton && int(a) < len(control.Actions) {
				w.dispatch(a)
				return 0
			}
		}

	case win.WM_CLOSE:
		w.dispatch(control.ActionQuit)
		return 0

	case win.WM_DESTROY:
		delete(controlWindows, hwnd)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}
