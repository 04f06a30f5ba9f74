// Package tui is the terminal front end of the application workflow: it shows
// the job, records the intro clip, submits and, when screening fails,
// collects pasted resume text.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justsurfingit/applicant-intake/internal/capture"
	"github.com/justsurfingit/applicant-intake/internal/submission"
)

// Recorder is the part of capture.Session the screen drives.
type Recorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (*capture.Clip, error)
	Wait(ctx context.Context) (*capture.Clip, error)
	Retake()
	TimeLeft() int
}

type mode int

const (
	modeDescription mode = iota
	modeRecord
	modeSubmitting
	modeManual
	modeDone
)

const countdownRefresh = 200 * time.Millisecond

type (
	snapshotMsg  submission.Snapshot
	countdownMsg struct{}
	recordingMsg struct{ err error }
	clipMsg      struct {
		clip *capture.Clip
		err  error
	}
	submitDoneMsg  struct{ err error }
	recoverDoneMsg struct{ err error }
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Model walks one submission from the job description to the success screen.
type Model struct {
	ctx     context.Context
	sub     *submission.Submission
	draft   *submission.Draft
	rec     Recorder
	updates <-chan submission.Snapshot

	mode      mode
	snap      submission.Snapshot
	recording bool
	timeLeft  int
	width     int
	status    string
	errMsg    string
	failed    bool
	saving    bool

	spinner   spinner.Model
	upload    progress.Model
	screening progress.Model
	paste     textarea.Model
}

// NewModel builds the screen. rec may be nil when no camera is used; updates
// is the channel fed by Observer.
func NewModel(ctx context.Context, sub *submission.Submission, draft *submission.Draft, rec Recorder, updates <-chan submission.Snapshot) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ta := textarea.New()
	ta.Placeholder = "Paste the text of your resume here"
	ta.CharLimit = 0
	ta.SetWidth(72)
	ta.SetHeight(12)

	return Model{
		ctx:       ctx,
		sub:       sub,
		draft:     draft,
		rec:       rec,
		updates:   updates,
		mode:      modeDescription,
		snap:      sub.Snapshot(),
		timeLeft:  capture.MaxDuration,
		spinner:   sp,
		upload:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		screening: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		paste:     ta,
	}
}

// Observer returns a workflow observer that forwards snapshots to ch without
// blocking the workflow. Stale snapshots are dropped when the screen lags.
func Observer(ch chan<- submission.Snapshot) func(submission.Snapshot) {
	return func(s submission.Snapshot) {
		select {
		case ch <- s:
		default:
		}
	}
}

// Failed reports whether the run ended without a stored application.
func (m Model) Failed() bool {
	return m.failed
}

func (m Model) Err() string {
	return m.errMsg
}

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 4; w > 20 {
			m.paste.SetWidth(w)
		}
		return m, nil
	case snapshotMsg:
		if m.mode == modeSubmitting || m.saving {
			m.snap = submission.Snapshot(msg)
		}
		return m, waitForSnapshot(m.updates)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case countdownMsg:
		if !m.recording {
			return m, nil
		}
		m.timeLeft = m.rec.TimeLeft()
		return m, countdown()
	case recordingMsg:
		if msg.err != nil {
			m.errMsg = recordError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.recording = true
		m.timeLeft = capture.MaxDuration
		return m, tea.Batch(countdown(), waitForClip(m.ctx, m.rec))
	case clipMsg:
		if !m.recording {
			return m, nil
		}
		m.recording = false
		if msg.err != nil {
			m.errMsg = "Recording failed: " + msg.err.Error()
			return m, nil
		}
		m.draft.Video = msg.clip
		m.timeLeft = msg.clip.TimeLeft
		m.status = fmt.Sprintf("Recorded %ds intro clip.", msg.clip.Duration())
		return m, nil
	case submitDoneMsg:
		return m.afterSubmit(msg.err)
	case recoverDoneMsg:
		return m.afterRecover(msg.err)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if keyMsg.Type == tea.KeyCtrlC {
		if m.mode != modeDone {
			m.failed = true
			m.errMsg = "cancelled"
		}
		return m, tea.Quit
	}

	switch m.mode {
	case modeDescription:
		return m.updateDescription(keyMsg)
	case modeRecord:
		return m.updateRecord(keyMsg)
	case modeManual:
		return m.updateManual(keyMsg)
	case modeDone:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateDescription(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.failed = true
		return m, tea.Quit
	case "enter":
		if err := m.sub.Proceed(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.snap = m.sub.Snapshot()
		if m.rec == nil {
			return m.startSubmit()
		}
		m.mode = modeRecord
	}
	return m, nil
}

func (m Model) updateRecord(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		if m.recording || m.draft.Video != nil {
			return m, nil
		}
		return m, startRecording(m.ctx, m.rec)
	case "s":
		if !m.recording {
			return m, nil
		}
		return m, stopRecording(m.ctx, m.rec)
	case "t":
		if m.recording || m.draft.Video == nil {
			return m, nil
		}
		m.rec.Retake()
		m.draft.Video = nil
		m.timeLeft = capture.MaxDuration
		m.status = "Clip discarded."
	case "enter":
		if m.recording {
			return m, nil
		}
		return m.startSubmit()
	}
	return m, nil
}

func (m Model) updateManual(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	if msg.Type == tea.KeyCtrlS {
		text := strings.TrimSpace(m.paste.Value())
		if text == "" {
			m.errMsg = "Paste your resume text to continue."
			return m, nil
		}
		m.errMsg = ""
		m.saving = true
		return m, tea.Batch(m.spinner.Tick, recoverCmd(m.ctx, m.sub, text))
	}
	var cmd tea.Cmd
	m.paste, cmd = m.paste.Update(msg)
	return m, cmd
}

func (m Model) startSubmit() (tea.Model, tea.Cmd) {
	m.mode = modeSubmitting
	m.errMsg = ""
	return m, tea.Batch(m.spinner.Tick, submitCmd(m.ctx, m.sub, m.draft))
}

func (m Model) afterSubmit(err error) (tea.Model, tea.Cmd) {
	m.snap = m.sub.Snapshot()
	switch {
	case err == nil:
		m.mode = modeDone
		return m, nil
	case errors.Is(err, submission.ErrScreeningFailed):
		m.mode = modeManual
		m.errMsg = ""
		return m, m.paste.Focus()
	}
	m.mode = modeDone
	m.failed = true
	m.errMsg = userMessage(err)
	return m, nil
}

func (m Model) afterRecover(err error) (tea.Model, tea.Cmd) {
	m.saving = false
	m.snap = m.sub.Snapshot()
	if err != nil {
		var ve *submission.ValidationError
		if errors.As(err, &ve) {
			m.errMsg = ve.Message
			return m, nil
		}
		m.mode = modeDone
		m.failed = true
		m.errMsg = userMessage(err)
		return m, nil
	}
	m.paste.Blur()
	m.mode = modeDone
	return m, nil
}

func userMessage(err error) string {
	var ve *submission.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return submission.GenericErrorMessage
}

func recordError(err error) string {
	if errors.Is(err, capture.ErrPermissionDenied) {
		return "Camera or microphone access was denied. Press r to retry or enter to continue without video."
	}
	return "Could not start recording: " + err.Error()
}

func (m Model) View() string {
	header := titleStyle.Render(m.sub.Job().Title)
	var body string
	switch m.mode {
	case modeDescription:
		body = m.viewDescription()
	case modeRecord:
		body = m.viewRecord()
	case modeSubmitting:
		body = m.viewSubmitting()
	case modeManual:
		body = m.viewManual()
	case modeDone:
		body = m.viewDone()
	}

	parts := []string{header, body}
	if m.status != "" && m.mode == modeRecord {
		parts = append(parts, okStyle.Render(m.status))
	}
	if m.errMsg != "" && m.mode != modeDone {
		parts = append(parts, errorStyle.Render(m.errMsg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m Model) viewDescription() string {
	job := m.sub.Job()
	desc := strings.TrimSpace(job.Description)
	if desc == "" {
		desc = mutedStyle.Render("No description provided.")
	}
	lines := []string{}
	if job.Location != "" {
		lines = append(lines, mutedStyle.Render(job.Location))
	}
	lines = append(lines, desc)
	width := 80
	if m.width > 10 {
		width = m.width - 4
	}
	panel := panelStyle.Width(width).Render(strings.Join(lines, "\n\n"))
	return lipgloss.JoinVertical(lipgloss.Left, panel, mutedStyle.Render("enter apply • q quit"))
}

func (m Model) viewRecord() string {
	var b strings.Builder
	b.WriteString("Intro video (optional, up to ")
	fmt.Fprintf(&b, "%ds)\n\n", capture.MaxDuration)
	switch {
	case m.recording:
		fmt.Fprintf(&b, "%s Recording... %ds left\n", errorStyle.Render("●"), m.timeLeft)
		b.WriteString(mutedStyle.Render("s stop"))
	case m.draft.Video != nil:
		b.WriteString(mutedStyle.Render("enter submit • t retake"))
	default:
		b.WriteString(mutedStyle.Render("r record • enter submit without video"))
	}
	return b.String()
}

func (m Model) viewSubmitting() string {
	lines := []string{fmt.Sprintf("%s %s", m.spinner.View(), phaseLabel(m.snap.Phase))}
	if m.draft.Video != nil {
		lines = append(lines, "Upload    "+m.upload.ViewAs(m.snap.UploadProgress/100))
	}
	lines = append(lines, "Screening "+m.screening.ViewAs(m.snap.ScreeningProgress/100))
	return strings.Join(lines, "\n")
}

func (m Model) viewManual() string {
	intro := "We couldn't read your resume automatically. Paste its text below to finish your application."
	if m.saving {
		return lipgloss.JoinVertical(lipgloss.Left, intro, m.spinner.View()+" Saving...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, intro, m.paste.View(), mutedStyle.Render("ctrl+s submit • ctrl+c quit"))
}

func (m Model) viewDone() string {
	if m.failed {
		return errorStyle.Render(m.errMsg) + "\n" + mutedStyle.Render("press any key to exit")
	}
	return okStyle.Render("Application submitted. Thank you!") + "\n" +
		mutedStyle.Render("Reference "+m.snap.CandidateID+" • press any key to exit")
}

func phaseLabel(p submission.Phase) string {
	switch p {
	case submission.PhaseChecking:
		return "Checking for an earlier application..."
	case submission.PhaseCreating:
		return "Saving your details..."
	case submission.PhaseUploading:
		return "Uploading files..."
	case submission.PhaseScreening:
		return "Reviewing your resume..."
	case submission.PhaseAttaching:
		return "Attaching your video..."
	}
	return "Submitting..."
}

func waitForSnapshot(ch <-chan submission.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(<-ch)
	}
}

func countdown() tea.Cmd {
	return tea.Tick(countdownRefresh, func(time.Time) tea.Msg { return countdownMsg{} })
}

func startRecording(ctx context.Context, rec Recorder) tea.Cmd {
	return func() tea.Msg {
		return recordingMsg{err: rec.Start(ctx)}
	}
}

// stopRecording only triggers the stop; the clip arrives through waitForClip.
func stopRecording(ctx context.Context, rec Recorder) tea.Cmd {
	return func() tea.Msg {
		_, _ = rec.Stop(ctx)
		return nil
	}
}

func waitForClip(ctx context.Context, rec Recorder) tea.Cmd {
	return func() tea.Msg {
		clip, err := rec.Wait(ctx)
		return clipMsg{clip: clip, err: err}
	}
}

func submitCmd(ctx context.Context, sub *submission.Submission, d *submission.Draft) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: sub.Submit(ctx, d)}
	}
}

func recoverCmd(ctx context.Context, sub *submission.Submission, text string) tea.Cmd {
	return func() tea.Msg {
		return recoverDoneMsg{err: sub.RecoverManually(ctx, text)}
	}
}
