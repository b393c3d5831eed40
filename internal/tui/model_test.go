package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Azahorscak/remitter-tui/internal/errs"
	"github.com/Azahorscak/remitter-tui/internal/remitter"
)

// stubAPI records calls and returns canned results.
type stubAPI struct {
	me    remitter.Profile
	meErr error

	saveErr error

	meCalls, createCalls, updateCalls int
	saved                             remitter.Profile
}

func (s *stubAPI) Me(ctx context.Context) (remitter.Profile, error) {
	s.meCalls++
	return s.me, s.meErr
}

func (s *stubAPI) Create(ctx context.Context, p remitter.Profile) (remitter.Profile, error) {
	s.createCalls++
	s.saved = p
	if s.saveErr != nil {
		return remitter.Profile{}, s.saveErr
	}
	return p, nil
}

func (s *stubAPI) Update(ctx context.Context, p remitter.Profile) (remitter.Profile, error) {
	s.updateCalls++
	s.saved = p
	if s.saveErr != nil {
		return remitter.Profile{}, s.saveErr
	}
	return p, nil
}

func newTestProfile() remitter.Profile {
	return remitter.Profile{
		AccountNumber: "123",
		AccountName:   "A Kumar",
		BankName:      "State Bank",
		BranchName:    "Fort",
		IFSCCode:      "SBIN0000001",
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

func key(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// run executes cmd and any batched commands it expands to.
// Only call it on commands that do not sleep (API calls and spinner ticks).
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// deliver runs cmd and feeds API results back into the model.
func deliver(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range run(cmd) {
		switch msg.(type) {
		case profileLoadedMsg, submitResultMsg:
			var next tea.Cmd
			m, next = update(t, m, msg)
			if next != nil {
				m = deliver(t, m, next)
			}
		}
	}
	return m
}

// loaded returns a model that has completed its first load against api.
func loaded(t *testing.T, api *stubAPI) Model {
	t.Helper()
	m := New(api)
	return deliver(t, m, m.Init())
}

// typeText sends text to the focused input, discarding cursor commands.
func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = update(t, m, key(text))
	return m
}

// fillForm types every field of p in form order, leaving focus on the button.
func fillForm(t *testing.T, m Model, p remitter.Profile) Model {
	t.Helper()
	for _, f := range remitter.Fields() {
		if m.Focused() != int(f) {
			t.Fatalf("expected focus on field %d, got %d", f, m.Focused())
		}
		if v := p.Get(f); v != "" {
			m = typeText(t, m, v)
		}
		m, _ = update(t, m, key("tab"))
	}
	return m
}

func TestNew_StartsLoading(t *testing.T) {
	m := New(nil)
	if m.State().Mode() != remitter.ModeLoading {
		t.Errorf("expected ModeLoading, got %v", m.State().Mode())
	}
	if !strings.Contains(m.View(), "Loading bank details") {
		t.Errorf("expected loading view, got: %s", m.View())
	}
}

func TestInit_FetchesProfile(t *testing.T) {
	api := &stubAPI{me: newTestProfile()}
	m := loaded(t, api)

	if api.meCalls != 1 {
		t.Errorf("expected 1 load call, got %d", api.meCalls)
	}
	s := m.State()
	if !s.Exists || s.Editing {
		t.Errorf("expected viewing an existing record, got %+v", s)
	}
	if m.Value(remitter.FieldIFSCCode) != "SBIN0000001" {
		t.Errorf("input not synced, got %q", m.Value(remitter.FieldIFSCCode))
	}
}

func TestModel_ViewingRendersReadOnly(t *testing.T) {
	m := loaded(t, &stubAPI{me: newTestProfile()})
	view := m.View()

	for _, want := range []string{"Bank Details", "Account Number *", "SWIFT Code", "State Bank", "e: edit details"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
	if strings.Contains(view, "Update Details") {
		t.Error("save button should be hidden while viewing")
	}
}

func TestModel_TypingIgnoredWhileViewing(t *testing.T) {
	m := loaded(t, &stubAPI{me: newTestProfile()})
	m = typeText(t, m, "x")

	if m.State().Profile != newTestProfile() {
		t.Errorf("profile changed while viewing: %+v", m.State().Profile)
	}
}

func TestModel_NotFoundEntersCreateMode(t *testing.T) {
	m := loaded(t, &stubAPI{meErr: errs.NewNotFoundError("none")})
	s := m.State()

	if s.Exists || !s.Editing {
		t.Fatalf("expected exists=false editing=true, got %+v", s)
	}
	if s.Profile != (remitter.Profile{}) {
		t.Errorf("expected empty fields, got %+v", s.Profile)
	}
	view := m.View()
	if !strings.Contains(view, "Save Details") {
		t.Error("expected Save Details button in create mode")
	}
	if strings.Contains(view, "Esc: cancel") {
		t.Error("create mode must not offer cancel")
	}
}

func TestModel_UnauthorizedLoad(t *testing.T) {
	m := loaded(t, &stubAPI{meErr: errs.NewUnauthorizedError("expired")})
	s := m.State()

	if s.Editing || s.Exists {
		t.Errorf("expected editing=false exists=false, got %+v", s)
	}
	view := m.View()
	if !strings.Contains(view, remitter.StatusReauth) {
		t.Errorf("expected re-authentication prompt, got: %s", view)
	}
	if !strings.Contains(view, "No Bank Details Added") {
		t.Errorf("expected empty-state message, got: %s", view)
	}
}

func TestModel_GenericLoadError(t *testing.T) {
	m := loaded(t, &stubAPI{meErr: fmt.Errorf("connection refused")})
	if !strings.Contains(m.View(), remitter.StatusLoadFailed) {
		t.Errorf("expected load error banner, got: %s", m.View())
	}
}

func TestModel_AddFromEmptyState(t *testing.T) {
	m := loaded(t, &stubAPI{meErr: errs.NewUnauthorizedError("expired")})
	m, _ = update(t, m, key("a"))

	if m.State().Mode() != remitter.ModeEditingNew {
		t.Errorf("expected ModeEditingNew, got %v", m.State().Mode())
	}
	if strings.Contains(m.View(), remitter.StatusReauth) {
		t.Error("expected banner cleared when entering edit mode")
	}
}

func TestModel_TabCyclesFocus(t *testing.T) {
	m := loaded(t, &stubAPI{meErr: errs.NewNotFoundError("none")})

	for i := 1; i <= focusCount; i++ {
		m, _ = update(t, m, key("tab"))
		if want := i % focusCount; m.Focused() != want {
			t.Fatalf("after %d tabs expected focus %d, got %d", i, want, m.Focused())
		}
	}

	m, _ = update(t, m, key("shift+tab"))
	if m.Focused() != remitter.FieldCount {
		t.Errorf("expected shift+tab to wrap to the save button, got %d", m.Focused())
	}
}

func TestModel_CreateCallsCreateOnly(t *testing.T) {
	api := &stubAPI{meErr: errs.NewNotFoundError("none")}
	m := loaded(t, api)
	m = fillForm(t, m, newTestProfile())

	m, cmd := update(t, m, key("enter"))
	if !m.State().Submitting {
		t.Fatal("expected submitting state")
	}
	if !strings.Contains(m.View(), "Saving") {
		t.Error("expected saving indicator")
	}

	m = deliver(t, m, cmd)
	if api.createCalls != 1 || api.updateCalls != 0 {
		t.Errorf("expected 1 create and 0 update calls, got %d/%d", api.createCalls, api.updateCalls)
	}
	if api.saved != newTestProfile() {
		t.Errorf("unexpected payload %+v", api.saved)
	}

	s := m.State()
	if !s.Exists || s.Editing || s.Submitting {
		t.Errorf("expected viewing after save, got %+v", s)
	}
	if !strings.Contains(m.View(), remitter.StatusSaved) {
		t.Error("expected success banner")
	}
}

func TestModel_UpdateCallsUpdateOnly(t *testing.T) {
	api := &stubAPI{me: newTestProfile()}
	m := loaded(t, api)

	m, _ = update(t, m, key("e"))
	if m.State().Mode() != remitter.ModeEditingExisting {
		t.Fatalf("expected ModeEditingExisting, got %v", m.State().Mode())
	}
	if !strings.Contains(m.View(), "Update Details") {
		t.Error("expected Update Details button")
	}
	m, _ = update(t, m, key("tab"))
	m = typeText(t, m, "4")

	m, cmd := update(t, m, key("ctrl+s"))
	m = deliver(t, m, cmd)

	if api.updateCalls != 1 || api.createCalls != 0 {
		t.Errorf("expected 1 update and 0 create calls, got %d/%d", api.updateCalls, api.createCalls)
	}
	if api.saved.AccountNumber != "1234" {
		t.Errorf("expected edited account number, got %q", api.saved.AccountNumber)
	}
}

func TestModel_DoubleSubmitIsNoOp(t *testing.T) {
	api := &stubAPI{me: newTestProfile()}
	m := loaded(t, api)
	m, _ = update(t, m, key("e"))

	m, first := update(t, m, key("ctrl+s"))
	if first == nil {
		t.Fatal("expected save command")
	}
	m, second := update(t, m, key("ctrl+s"))
	if second != nil {
		t.Error("expected no command from second submit")
	}

	deliver(t, m, first)
	if api.updateCalls != 1 {
		t.Errorf("expected exactly 1 update call, got %d", api.updateCalls)
	}
}

func TestModel_SubmittingBlocksKeyInput(t *testing.T) {
	m := loaded(t, &stubAPI{me: newTestProfile()})
	m, _ = update(t, m, key("e"))
	m, _ = update(t, m, key("ctrl+s"))

	before := m.Focused()
	m, cmd := update(t, m, key("tab"))
	if m.Focused() != before || cmd != nil {
		t.Error("tab should be ignored while submitting")
	}
	m, cmd = update(t, m, key("esc"))
	if cmd != nil || !m.State().Submitting {
		t.Error("esc should be ignored while submitting")
	}
	m = typeText(t, m, "z")
	if m.State().Profile != newTestProfile() {
		t.Error("typing changed the profile while submitting")
	}

	_, cmd = update(t, m, key("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c must still quit while submitting")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModel_ValidationErrorShown(t *testing.T) {
	api := &stubAPI{
		meErr:   errs.NewNotFoundError("none"),
		saveErr: errs.FromResponse(422, []byte(`{"detail":[{"msg":"required"},{"msg":"bad format"}]}`)),
	}
	m := loaded(t, api)
	m = fillForm(t, m, newTestProfile())

	m, cmd := update(t, m, key("enter"))
	m = deliver(t, m, cmd)

	s := m.State()
	if s.Status != "required, bad format" {
		t.Errorf("status = %q, want %q", s.Status, "required, bad format")
	}
	if !s.Editing || s.Submitting {
		t.Errorf("expected to stay in edit mode, got %+v", s)
	}
	if s.Profile != newTestProfile() {
		t.Error("fields changed after failed save")
	}
	if !strings.Contains(m.View(), "required, bad format") {
		t.Error("expected validation messages in view")
	}
}

func TestModel_RequiredFieldsBlockSubmit(t *testing.T) {
	api := &stubAPI{meErr: errs.NewNotFoundError("none")}
	m := loaded(t, api)
	m = fillForm(t, m, remitter.Profile{AccountNumber: "1", AccountName: "A"})

	m, cmd := update(t, m, key("ctrl+s"))
	if cmd != nil {
		t.Error("expected no command when required fields are empty")
	}
	if m.State().Submitting {
		t.Error("submit should be blocked")
	}
	if m.Focused() != int(remitter.FieldBankName) {
		t.Errorf("expected focus on first missing field, got %d", m.Focused())
	}
	if !strings.Contains(m.View(), "required") {
		t.Error("expected missing fields to be marked")
	}
	if api.createCalls != 0 {
		t.Error("create must not be called")
	}
}

func TestModel_CancelRestoresServerState(t *testing.T) {
	api := &stubAPI{me: newTestProfile()}
	m := loaded(t, api)

	m, _ = update(t, m, key("e"))
	m, _ = update(t, m, key("tab"))
	m = typeText(t, m, "999")
	if m.State().Profile.AccountNumber != "123999" {
		t.Fatalf("edit not applied: %q", m.State().Profile.AccountNumber)
	}

	m, cmd := update(t, m, key("esc"))
	if cmd == nil {
		t.Fatal("expected reload command on cancel")
	}
	if m.State().Editing {
		t.Error("expected edit mode left immediately")
	}
	m = deliver(t, m, cmd)

	if api.meCalls != 2 {
		t.Errorf("expected a second load, got %d calls", api.meCalls)
	}
	if m.State().Profile != newTestProfile() {
		t.Errorf("expected server values restored, got %+v", m.State().Profile)
	}
	if m.Value(remitter.FieldAccountNumber) != "123" {
		t.Errorf("input not restored, got %q", m.Value(remitter.FieldAccountNumber))
	}
}

func TestModel_CancelWithFailedReloadDiscardsEdits(t *testing.T) {
	api := &stubAPI{me: newTestProfile()}
	m := loaded(t, api)

	m, _ = update(t, m, key("e"))
	m, _ = update(t, m, key("tab"))
	m, _ = update(t, m, key("tab"))
	m = typeText(t, m, " Unsaved")
	if m.State().Profile.BankName != "State Bank Unsaved" {
		t.Fatalf("edit not applied: %q", m.State().Profile.BankName)
	}

	api.meErr = errs.NewUnauthorizedError("expired")
	m, cmd := update(t, m, key("esc"))
	m = deliver(t, m, cmd)

	if m.State().Mode() != remitter.ModeViewing {
		t.Fatalf("expected ModeViewing, got %v", m.State().Mode())
	}
	if m.Value(remitter.FieldBankName) != "State Bank" {
		t.Errorf("input still shows unsaved edit: %q", m.Value(remitter.FieldBankName))
	}
	view := m.View()
	if strings.Contains(view, "Unsaved") {
		t.Error("unsaved edit rendered as stored data")
	}
	if !strings.Contains(view, remitter.StatusReauth) {
		t.Error("expected re-authentication banner")
	}
}

func TestModel_EscInCreateModeIsNoOp(t *testing.T) {
	m := loaded(t, &stubAPI{meErr: errs.NewNotFoundError("none")})
	m = typeText(t, m, "1")

	m, cmd := update(t, m, key("esc"))
	if cmd != nil {
		t.Error("expected no command from esc in create mode")
	}
	if !m.State().Editing || m.State().Profile.AccountName != "1" {
		t.Errorf("esc changed create-mode state: %+v", m.State())
	}
}

func TestModel_QuitKeys(t *testing.T) {
	m := loaded(t, &stubAPI{me: newTestProfile()})

	_, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("expected quit command from q while viewing")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	// In edit mode q is just a character.
	m, _ = update(t, m, key("e"))
	m, _ = update(t, m, key("tab"))
	m = typeText(t, m, "q")
	if m.State().Profile.AccountNumber != "123q" {
		t.Errorf("expected q typed into field, got %q", m.State().Profile.AccountNumber)
	}
}

func TestModel_ReadOnlyBlocksEditing(t *testing.T) {
	api := &stubAPI{me: newTestProfile()}
	m := New(api, WithReadOnly(true))
	m = deliver(t, m, m.Init())

	m, cmd := update(t, m, key("e"))
	if cmd != nil || m.State().Editing {
		t.Error("expected e to be ignored in read-only mode")
	}
	view := m.View()
	if strings.Contains(view, "e: edit details") {
		t.Error("read-only help bar should not offer editing")
	}
	if !strings.Contains(view, "READ-ONLY") {
		t.Error("expected READ-ONLY indicator")
	}
}

func TestModel_ReadOnlyNotFoundStaysOutOfCreateMode(t *testing.T) {
	api := &stubAPI{meErr: errs.NewNotFoundError("none")}
	m := New(api, WithReadOnly(true))
	m = deliver(t, m, m.Init())

	m, _ = update(t, m, key("a"))
	if m.State().Editing {
		t.Fatal("read-only user entered create mode")
	}
	view := m.View()
	if !strings.Contains(view, "No Bank Details Added") || strings.Contains(view, "a: add bank details") {
		t.Errorf("unexpected read-only empty state: %s", view)
	}
	if api.createCalls != 0 {
		t.Error("create must not be called")
	}
}

func TestModel_SpinnerTicksOnlyWhileBusy(t *testing.T) {
	m := New(&stubAPI{})
	_, cmd := update(t, m, spinner.TickMsg{ID: m.spinner.ID()})
	if cmd == nil {
		t.Error("expected spinner to keep ticking while loading")
	}

	m = loaded(t, &stubAPI{me: newTestProfile()})
	_, cmd = update(t, m, spinner.TickMsg{ID: m.spinner.ID()})
	if cmd != nil {
		t.Error("expected spinner to stop once idle")
	}
}

func TestModel_WindowSizeMsg(t *testing.T) {
	m, _ := update(t, New(nil), tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.width != 120 || m.height != 40 {
		t.Errorf("expected size 120x40, got %dx%d", m.width, m.height)
	}
}

func TestModel_ViewSanitizesServerValues(t *testing.T) {
	p := newTestProfile()
	p.BankName = "Evil\x1b[2JBank"
	m := loaded(t, &stubAPI{me: p})

	view := m.View()
	if strings.Contains(view, "\x1b[2J") {
		t.Error("escape sequence from server reached the view")
	}
	if !strings.Contains(view, "EvilBank") {
		t.Errorf("expected sanitized bank name, got: %s", view)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"\x1b[31mred\x1b[0m", "red"},
		{"a\x1bMb", "ab"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitize(tt.in); got != tt.want {
			t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
