//go:build windows

package gui

import (
	"fmt"
	"image"
	"log"
	"sync"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"screen-region-capture/src/overlay"
)

const (
	surfaceClassName = "ScreenRegionCaptureOverlay"

	wmRedraw = win.WM_APP + 1

	ulwAlpha   = 0x00000002
	acSrcOver  = 0x00
	acSrcAlpha = 0x01
	rgnDiff    = 4
)

var (
	user32DLL               = windows.NewLazySystemDLL("user32.dll")
	gdi32DLL                = windows.NewLazySystemDLL("gdi32.dll")
	procUpdateLayeredWindow = user32DLL.NewProc("UpdateLayeredWindow")
	procSetWindowRgn        = user32DLL.NewProc("SetWindowRgn")
	procCreateRectRgn       = gdi32DLL.NewProc("CreateRectRgn")
	procCombineRgn          = gdi32DLL.NewProc("CombineRgn")
	procDeleteObject        = gdi32DLL.NewProc("DeleteObject")
)

type blendFunction struct {
	BlendOp             byte
	BlendFlags          byte
	SourceConstantAlpha byte
	AlphaFormat         byte
}

// surfaces maps live overlay windows to their state. Only touched on the UI thread.
var surfaces = map[win.HWND]*layeredSurface{}

var (
	surfaceClassOnce sync.Once
	surfaceClassErr  error
	crossCursor      win.HCURSOR
)

// layeredSurface is a WS_EX_LAYERED popup spanning the virtual desktop. The
// overlay renders into frame with per-pixel alpha; SourceConstantAlpha
// carries the window opacity.
type layeredSurface struct {
	hwnd    win.HWND
	bounds  image.Rectangle
	handler overlay.Handler

	frame  *image.RGBA
	memDC  win.HDC
	bitmap win.HBITMAP
	oldBmp win.HGDIOBJ
	bits   []byte

	opacity byte
	masked  bool
	visible bool
	pending bool
}

func registerSurfaceClass() error {
	surfaceClassOnce.Do(func() {
		crossCursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))
		wndClass := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			LpfnWndProc:   syscall.NewCallback(surfaceWndProc),
			HInstance:     win.GetModuleHandle(nil),
			HCursor:       crossCursor,
			LpszClassName: syscall.StringToUTF16Ptr(surfaceClassName),
		}
		if atom := win.RegisterClassEx(&wndClass); atom == 0 {
			surfaceClassErr = fmt.Errorf("failed to register window class %s", surfaceClassName)
		}
	})
	return surfaceClassErr
}

// NewSurface creates the hidden overlay window covering bounds (global
// coordinates). It satisfies overlay.SurfaceFactory.
func NewSurface(bounds image.Rectangle, h overlay.Handler) (overlay.Surface, error) {
	if err := registerSurfaceClass(); err != nil {
		return nil, err
	}
	w, ht := bounds.Dx(), bounds.Dy()

	s := &layeredSurface{
		bounds:  bounds,
		handler: h,
		frame:   image.NewRGBA(image.Rect(0, 0, w, ht)),
		opacity: 255,
	}
	if err := s.createBitmap(); err != nil {
		return nil, err
	}

	s.hwnd = win.CreateWindowEx(
		win.WS_EX_LAYERED|win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW,
		syscall.StringToUTF16Ptr(surfaceClassName),
		syscall.StringToUTF16Ptr("Screen Region Capture Overlay"),
		win.WS_POPUP,
		int32(bounds.Min.X), int32(bounds.Min.Y), int32(w), int32(ht),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if s.hwnd == 0 {
		s.freeBitmap()
		return nil, fmt.Errorf("failed to create overlay window")
	}
	surfaces[s.hwnd] = s
	log.Printf("OVERLAY: Window created, hwnd: %v, position: (%d,%d) size: (%d,%d)", s.hwnd, bounds.Min.X, bounds.Min.Y, w, ht)
	return s, nil
}

func (s *layeredSurface) createBitmap() error {
	w, h := s.frame.Bounds().Dx(), s.frame.Bounds().Dy()
	s.memDC = win.CreateCompatibleDC(0)
	if s.memDC == 0 {
		return fmt.Errorf("failed to create memory DC")
	}
	bi := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(w),
			BiHeight:      -int32(h), // Negative for top-down
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}
	var pBits unsafe.Pointer
	s.bitmap = win.CreateDIBSection(s.memDC, &bi.BmiHeader, win.DIB_RGB_COLORS, &pBits, 0, 0)
	if s.bitmap == 0 || pBits == nil {
		win.DeleteDC(s.memDC)
		return fmt.Errorf("failed to create %dx%d DIB section", w, h)
	}
	s.oldBmp = win.SelectObject(s.memDC, win.HGDIOBJ(s.bitmap))
	s.bits = unsafe.Slice((*byte)(pBits), w*h*4)
	return nil
}

func (s *layeredSurface) freeBitmap() {
	if s.memDC == 0 {
		return
	}
	win.SelectObject(s.memDC, s.oldBmp)
	win.DeleteObject(win.HGDIOBJ(s.bitmap))
	win.DeleteDC(s.memDC)
	s.memDC, s.bitmap, s.bits = 0, 0, nil
}

// redraw paints the frame and pushes it to the layered window.
func (s *layeredSurface) redraw() {
	if s.hwnd == 0 || s.bits == nil {
		return
	}
	s.handler.Paint(s.frame)
	var minAlpha uint8 = 1
	if s.masked {
		minAlpha = 0
	}
	toBGRA(s.bits, s.frame, minAlpha)

	screenDC := win.GetDC(0)
	defer win.ReleaseDC(0, screenDC)

	dst := win.POINT{X: int32(s.bounds.Min.X), Y: int32(s.bounds.Min.Y)}
	size := win.SIZE{CX: int32(s.bounds.Dx()), CY: int32(s.bounds.Dy())}
	src := win.POINT{}
	blend := blendFunction{BlendOp: acSrcOver, SourceConstantAlpha: s.opacity, AlphaFormat: acSrcAlpha}
	ret, _, err := procUpdateLayeredWindow.Call(
		uintptr(s.hwnd),
		uintptr(screenDC),
		uintptr(unsafe.Pointer(&dst)),
		uintptr(unsafe.Pointer(&size)),
		uintptr(s.memDC),
		uintptr(unsafe.Pointer(&src)),
		0,
		uintptr(unsafe.Pointer(&blend)),
		ulwAlpha,
	)
	if ret == 0 {
		log.Printf("OVERLAY: UpdateLayeredWindow failed: %v", err)
	}
}

func (s *layeredSurface) Show() {
	s.visible = true
	s.redraw()
	win.ShowWindow(s.hwnd, win.SW_SHOW)
	win.SetWindowPos(s.hwnd, win.HWND_TOPMOST, 0, 0, 0, 0, win.SWP_NOMOVE|win.SWP_NOSIZE)
}

func (s *layeredSurface) Hide() {
	s.visible = false
	win.ShowWindow(s.hwnd, win.SW_HIDE)
}

func (s *layeredSurface) Visible() bool { return s.visible }

func (s *layeredSurface) SetOpacity(opacity float64) {
	s.opacity = opacityByte(opacity)
	s.Invalidate()
}

func (s *layeredSurface) SetInputMask(m *overlay.Mask) {
	exStyle := uint32(win.GetWindowLong(s.hwnd, win.GWL_EXSTYLE))
	if m == nil {
		procSetWindowRgn.Call(uintptr(s.hwnd), 0, 1)
		exStyle &^= win.WS_EX_TRANSPARENT
		s.masked = false
	} else {
		rgn := createRectRgn(m.Bounds)
		if !m.Hole.Empty() {
			hole := createRectRgn(m.Hole)
			procCombineRgn.Call(rgn, rgn, hole, rgnDiff)
			procDeleteObject.Call(hole)
		}
		// The system owns rgn after a successful SetWindowRgn.
		if ret, _, err := procSetWindowRgn.Call(uintptr(s.hwnd), rgn, 1); ret == 0 {
			log.Printf("OVERLAY: SetWindowRgn failed: %v", err)
			procDeleteObject.Call(rgn)
		}
		exStyle |= win.WS_EX_TRANSPARENT
		s.masked = true
	}
	win.SetWindowLong(s.hwnd, win.GWL_EXSTYLE, int32(exStyle))
	s.Invalidate()
}

func createRectRgn(r image.Rectangle) uintptr {
	rgn, _, _ := procCreateRectRgn.Call(
		uintptr(int32(r.Min.X)), uintptr(int32(r.Min.Y)),
		uintptr(int32(r.Max.X)), uintptr(int32(r.Max.Y)),
	)
	return rgn
}

func (s *layeredSurface) Activate() {
	win.SetForegroundWindow(s.hwnd)
	win.BringWindowToTop(s.hwnd)
	win.SetFocus(s.hwnd)
}

func (s *layeredSurface) ReleaseFocus() {
	win.ReleaseCapture()
	if win.GetFocus() == s.hwnd {
		win.SetFocus(0)
	}
}

// Invalidate coalesces repaint requests into one pending wmRedraw message.
func (s *layeredSurface) Invalidate() {
	if s.pending || s.hwnd == 0 {
		return
	}
	s.pending = true
	win.PostMessage(s.hwnd, wmRedraw, 0, 0)
}

func (s *layeredSurface) MapToGlobal(p image.Point) image.Point {
	return p.Add(s.bounds.Min)
}

func (s *layeredSurface) Close() error {
	if s.hwnd != 0 {
		win.DestroyWindow(s.hwnd)
		s.hwnd = 0
	}
	s.freeBitmap()
	return nil
}

func surfaceWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	s := surfaces[hwnd]
	if s == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_LBUTTONDOWN:
		win.SetCapture(hwnd)
		s.handler.Press(pointFromLParam(lParam))
		return 0

	case win.WM_MOUSEMOVE:
		s.handler.Move(pointFromLParam(lParam))
		return 0

	case win.WM_LBUTTONUP:
		// Release capture first: the handler may open a modal prompt.
		win.ReleaseCapture()
		s.handler.Release(pointFromLParam(lParam))
		return 0

	case wmRedraw:
		s.pending = false
		s.redraw()
		return 0

	case win.WM_SETCURSOR:
		if win.LOWORD(uint32(lParam)) == win.HTCLIENT {
			win.SetCursor(crossCursor)
			return 1
		}

	case win.WM_CLOSE:
		// Closing the overlay only hides it; Quit tears it down.
		s.Hide()
		return 0

	case win.WM_DESTROY:
		delete(surfaces, hwnd)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}
