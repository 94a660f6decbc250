package overlay

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"screen-region-capture/src/capture"
)

type fakeSurface struct {
	bounds      image.Rectangle
	visible     bool
	opacity     float64
	mask        *Mask
	maskSet     int
	activated   int
	released    int
	invalidated int
	closed      bool
}

func (s *fakeSurface) Show() { s.visible = true }
func (s *fakeSurface) Hide() { s.visible = false }
func (s *fakeSurface) Visible() bool { return s.visible }
func (s *fakeSurface) SetOpacity(o float64) { s.opacity = o }
func (s *fakeSurface) SetInputMask(m *Mask) { s.mask = m; s.maskSet++ }
func (s *fakeSurface) Activate() { s.activated++ }
func (s *fakeSurface) ReleaseFocus() { s.released++ }
func (s *fakeSurface) Invalidate() { s.invalidated++ }
func (s *fakeSurface) Close() error { s.closed = true; return nil }
func (s *fakeSurface) MapToGlobal(p image.Point) image.Point { return p.Add(s.bounds.Min) }

type fakePrompter struct {
	answers []string // "" with cancel=true entries model a cancelled dialog
	cancel  []bool
	asked   int
	warned  []string
	// during runs inside the first AskText, like events from a nested loop.
	during func()
}

func (p *fakePrompter) AskText(title, label string) (string, bool) {
	i := p.asked
	p.asked++
	if i == 0 && p.during != nil {
		p.during()
	}
	if i >= len(p.answers) {
		return "", false
	}
	if i < len(p.cancel) && p.cancel[i] {
		return "", false
	}
	return p.answers[i], true
}

func (p *fakePrompter) Warn(title, message string) {
	p.warned = append(p.warned, title)
	if p.during != nil && p.asked > 0 {
		p.during()
	}
}

type fakeCapturer struct {
	calls int
	err   error
}

func (c *fakeCapturer) PerformCapture(t capture.Target) error {
	c.calls++
	return c.err
}

type fakeFocus struct{ calls int }

func (f *fakeFocus) Activate() { f.calls++ }

type fixture struct {
	o        *Overlay
	surface  *fakeSurface
	prompter *fakePrompter
	capturer *fakeCapturer
	focus    *fakeFocus
}

func newFixture(t *testing.T, answers ...string) *fixture {
	t.Helper()
	f := &fixture{
		prompter: &fakePrompter{answers: answers},
		capturer: &fakeCapturer{},
		focus:    &fakeFocus{},
	}
	o, err := New(Options{
		Displays: []image.Rectangle{
			image.Rect(-1920, 0, 0, 1080),
			image.Rect(0, 0, 2560, 1440),
		},
		NewSurface: func(bounds image.Rectangle, h Handler) (Surface, error) {
			f.surface = &fakeSurface{bounds: bounds}
			return f.surface, nil
		},
		Prompter: f.prompter,
		Capturer: f.capturer,
		Focus:    f.focus,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.o = o
	return f
}

func (f *fixture) drag(from, to image.Point) {
	f.o.Press(from)
	f.o.Move(to)
	f.o.Release(to)
}

func TestNewSpansAllDisplays(t *testing.T) {
	f := newFixture(t)
	want := image.Rect(-1920, 0, 2560, 1440)
	if f.o.Bounds() != want {
		t.Errorf("Bounds() = %v, want %v", f.o.Bounds(), want)
	}
	if f.surface.opacity != DefaultOpacity {
		t.Errorf("initial opacity = %v, want %v", f.surface.opacity, DefaultOpacity)
	}
	if f.surface.mask != nil {
		t.Error("expected no input mask at construction")
	}
	if f.o.State() != (State{}) {
		t.Errorf("initial state = %+v, want zero", f.o.State())
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	factory := func(image.Rectangle, Handler) (Surface, error) { return &fakeSurface{}, nil }
	displays := []image.Rectangle{image.Rect(0, 0, 10, 10)}
	tests := []struct {
		name string
		opts Options
	}{
		{"no surface", Options{Displays: displays, Prompter: &fakePrompter{}, Capturer: &fakeCapturer{}}},
		{"no prompter", Options{Displays: displays, NewSurface: factory, Capturer: &fakeCapturer{}}},
		{"no capturer", Options{Displays: displays, NewSurface: factory, Prompter: &fakePrompter{}}},
		{"no displays", Options{NewSurface: factory, Prompter: &fakePrompter{}, Capturer: &fakeCapturer{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDragFinalizesAndBindsName(t *testing.T) {
	f := newFixture(t, "My Name!!2024")

	f.o.Press(image.Pt(300, 200))
	if st := f.o.State(); !st.Active || st.Finalized {
		t.Fatalf("after press state = %+v", st)
	}
	if f.surface.activated != 1 {
		t.Errorf("expected overlay activation on press, got %d", f.surface.activated)
	}
	f.o.Move(image.Pt(100, 50))
	f.o.Release(image.Pt(100, 50))

	st := f.o.State()
	if st.Active || !st.Finalized {
		t.Fatalf("after release state = %+v", st)
	}
	want := image.Rect(100, 50, 300, 200)
	if f.o.CaptureArea() != want {
		t.Errorf("CaptureArea() = %v, want %v", f.o.CaptureArea(), want)
	}
	name, ok := f.o.SessionName()
	if !ok || name != "My-Name-2024" {
		t.Errorf("SessionName() = %q, %v", name, ok)
	}
	if f.focus.calls != 1 {
		t.Errorf("expected focus handed to control window once, got %d", f.focus.calls)
	}
	if f.surface.released != 1 {
		t.Errorf("expected focus released once, got %d", f.surface.released)
	}
}

func TestMoveWithoutPressIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.o.Move(image.Pt(40, 40))
	f.o.Release(image.Pt(40, 40))
	if st := f.o.State(); st.Finalized || st.Active {
		t.Errorf("state = %+v, want untouched", st)
	}
	if f.prompter.asked != 0 {
		t.Error("release without drag must not prompt")
	}
}

func TestPromptRetriesInvalidNames(t *testing.T) {
	f := newFixture(t, "...", "---", "ok.name")
	f.drag(image.Pt(0, 0), image.Pt(10, 10))

	if f.prompter.asked != 3 {
		t.Errorf("asked %d times, want 3", f.prompter.asked)
	}
	if len(f.prompter.warned) != 2 || f.prompter.warned[0] != invalidNameTitle {
		t.Errorf("warnings = %v", f.prompter.warned)
	}
	if name, _ := f.o.SessionName(); name != "ok.name" {
		t.Errorf("SessionName() = %q", name)
	}
	if !f.o.State().Finalized {
		t.Error("expected finalized selection")
	}
}

func TestPromptCancelUnfinalizes(t *testing.T) {
	f := newFixture(t)
	f.prompter.cancel = []bool{true}
	f.prompter.answers = []string{""}
	f.drag(image.Pt(0, 0), image.Pt(10, 10))

	if f.o.State().Finalized {
		t.Error("cancelled prompt must leave selection unfinalized")
	}
	if _, ok := f.o.SessionName(); ok {
		t.Error("cancelled prompt must not bind a name")
	}
	if err := f.o.CaptureScreen(); !errors.Is(err, ErrNotFinalized) {
		t.Errorf("CaptureScreen() = %v, want ErrNotFinalized", err)
	}
	if f.capturer.calls != 0 {
		t.Error("capturer must not run without a finalized selection")
	}
}

func TestSecondDragKeepsBoundName(t *testing.T) {
	f := newFixture(t, "first", "second")
	f.drag(image.Pt(0, 0), image.Pt(10, 10))
	f.drag(image.Pt(5, 5), image.Pt(50, 50))

	if f.prompter.asked != 1 {
		t.Errorf("asked %d times, want 1", f.prompter.asked)
	}
	if name, _ := f.o.SessionName(); name != "first" {
		t.Errorf("SessionName() = %q, want first", name)
	}
	if got := f.o.CaptureArea(); got != image.Rect(5, 5, 50, 50) {
		t.Errorf("CaptureArea() = %v", got)
	}
}

func TestLockIgnoresPointerAndMasksInput(t *testing.T) {
	f := newFixture(t, "demo")
	f.drag(image.Pt(100, 100), image.Pt(200, 150))
	f.o.ToggleLock()

	st := f.o.State()
	if !st.Locked || !st.Finalized {
		t.Fatalf("after lock state = %+v", st)
	}
	if f.surface.mask == nil {
		t.Fatal("expected input mask when locked")
	}
	m := *f.surface.mask
	if m.Hole != image.Rect(100, 100, 200, 150) {
		t.Errorf("mask hole = %v", m.Hole)
	}
	if m.Bounds != image.Rect(0, 0, 4480, 1440) {
		t.Errorf("mask bounds = %v", m.Bounds)
	}
	if m.Covers(image.Pt(150, 120)) || !m.Covers(image.Pt(10, 10)) {
		t.Error("mask must cover everything except the selection")
	}
	if f.surface.opacity != DefaultLockedOpacity || !f.surface.visible {
		t.Errorf("locked surface opacity=%v visible=%v", f.surface.opacity, f.surface.visible)
	}

	f.o.Press(image.Pt(0, 0))
	f.o.Move(image.Pt(999, 999))
	f.o.Release(image.Pt(999, 999))
	if got := f.o.SelectionRect(); got != image.Rect(100, 100, 200, 150) {
		t.Errorf("locked selection changed to %v", got)
	}
	if name, ok := f.o.SessionName(); !ok || name != "demo" {
		t.Errorf("lock must keep session name, got %q %v", name, ok)
	}
}

func TestUnlockClearsSession(t *testing.T) {
	f := newFixture(t, "demo")
	f.drag(image.Pt(0, 0), image.Pt(10, 10))
	f.o.ToggleLock()
	focusBefore := f.focus.calls
	f.o.ToggleLock()

	st := f.o.State()
	if st.Locked || st.Finalized {
		t.Errorf("after unlock state = %+v", st)
	}
	if _, ok := f.o.SessionName(); ok {
		t.Error("unlock must clear the session name")
	}
	if f.surface.mask != nil {
		t.Error("unlock must remove the input mask")
	}
	if f.focus.calls != focusBefore+1 {
		t.Error("unlock must hand focus to the control window")
	}
}

func TestToggleTwiceFromFreshOverlay(t *testing.T) {
	f := newFixture(t)
	f.o.ToggleLock()
	f.o.ToggleLock()
	if st := f.o.State(); st.Locked || st.Finalized {
		t.Errorf("state = %+v", st)
	}
}

func TestLockDuringDragAbandonsDrag(t *testing.T) {
	f := newFixture(t, "demo")
	f.o.Press(image.Pt(0, 0))
	f.o.Move(image.Pt(20, 20))
	f.o.ToggleLock()

	st := f.o.State()
	if st.Active || st.Finalized || !st.Locked {
		t.Errorf("state = %+v", st)
	}
	f.o.Release(image.Pt(20, 20))
	if f.prompter.asked != 0 {
		t.Error("abandoned drag must not prompt")
	}
}

func TestCaptureScreenDelegates(t *testing.T) {
	f := newFixture(t, "demo")
	f.drag(image.Pt(0, 0), image.Pt(10, 10))
	f.capturer.err = capture.ErrCaptureInFlight

	if err := f.o.CaptureScreen(); !errors.Is(err, capture.ErrCaptureInFlight) {
		t.Errorf("CaptureScreen() = %v", err)
	}
	if f.capturer.calls != 1 {
		t.Errorf("capturer calls = %d", f.capturer.calls)
	}
}

func TestTargetMapsToGlobal(t *testing.T) {
	f := newFixture(t)
	if got := f.o.MapToGlobal(image.Pt(10, 20)); got != image.Pt(-1910, 20) {
		t.Errorf("MapToGlobal = %v", got)
	}
	f.o.Show()
	f.o.Hide()
	if f.o.Visible() {
		t.Error("expected hidden overlay")
	}
}

func TestRender(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	sel := image.Rect(60, 70, 20, 30) // reversed corners

	Render(dst, sel, false)

	tests := []struct {
		name string
		p    image.Point
		want color.RGBA
	}{
		{"wash", image.Pt(2, 2), WashColor},
		{"inside", image.Pt(40, 50), color.RGBA{}},
		{"edge", image.Pt(20, 50), ActiveBorder},
		{"outer edge", image.Pt(18, 50), ActiveBorder},
		{"past outer edge", image.Pt(17, 50), WashColor},
		{"inner edge", image.Pt(22, 50), ActiveBorder},
		{"past inner edge", image.Pt(23, 50), color.RGBA{}},
		{"bottom", image.Pt(40, 70), ActiveBorder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dst.RGBAAt(tt.p.X, tt.p.Y); got != tt.want {
				t.Errorf("pixel %v = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	Render(dst, sel, true)
	if got := dst.RGBAAt(20, 50); got != LockedBorder {
		t.Errorf("locked border = %v, want %v", got, LockedBorder)
	}
}

func TestRenderEmptySelectionIsWashOnly(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	Render(dst, image.Rect(5, 5, 5, 5), false)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if got := dst.RGBAAt(x, y); got != WashColor {
				t.Fatalf("pixel (%d,%d) = %v, want wash", x, y, got)
			}
		}
	}
}

func TestInputDuringPromptIsIgnored(t *testing.T) {
	f := newFixture(t, "demo")
	f.prompter.during = func() {
		f.o.Press(image.Pt(500, 500))
		f.o.Move(image.Pt(550, 550))
		f.o.Release(image.Pt(600, 600))
		f.o.ToggleLock()
	}

	f.o.Press(image.Pt(10, 10))
	f.o.Move(image.Pt(110, 60))
	f.o.Release(image.Pt(110, 60))

	st := f.o.State()
	if st.Active || st.Locked || !st.Finalized {
		t.Fatalf("state = %+v, want finalized and unlocked", st)
	}
	want := image.Rect(10, 10, 110, 60)
	if f.o.SelectionRect() != want || f.o.CaptureArea() != want {
		t.Errorf("selection = %v, capture area = %v, want %v", f.o.SelectionRect(), f.o.CaptureArea(), want)
	}
	if name, ok := f.o.SessionName(); !ok || name != "demo" {
		t.Errorf("SessionName() = %q, %v", name, ok)
	}
	if f.prompter.asked != 1 {
		t.Errorf("expected a single prompt, got %d", f.prompter.asked)
	}

	if err := f.o.CaptureScreen(); err != nil {
		t.Fatalf("CaptureScreen() = %v", err)
	}
	if f.capturer.calls != 1 {
		t.Errorf("expected capture delegated once, got %d", f.capturer.calls)
	}
}

func TestInputDuringInvalidNameWarningIsIgnored(t *testing.T) {
	f := newFixture(t, "!!!", "ok")
	f.prompter.during = func() {
		f.o.Press(image.Pt(700, 700))
		f.o.Release(image.Pt(800, 800))
	}

	f.o.Press(image.Pt(20, 20))
	f.o.Release(image.Pt(220, 120))

	if got := f.o.CaptureArea(); got != image.Rect(20, 20, 220, 120) {
		t.Errorf("CaptureArea() = %v", got)
	}
	if st := f.o.State(); !st.Finalized {
		t.Errorf("state = %+v, want finalized", st)
	}
	if name, _ := f.o.SessionName(); name != "ok" {
		t.Errorf("SessionName() = %q, want ok", name)
	}
	if len(f.prompter.warned) != 1 || f.prompter.asked != 2 {
		t.Errorf("warned=%v asked=%d", f.prompter.warned, f.prompter.asked)
	}
}
