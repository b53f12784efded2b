package tui

import (
	"fmt"
	"log/slog"

	"github.com/ChristianF88/launchdash/config"
	"github.com/ChristianF88/launchdash/dataset"
	"github.com/ChristianF88/launchdash/logging"
	"github.com/ChristianF88/launchdash/query"
	"github.com/ChristianF88/launchdash/reactive"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	allSitesLabel = "All Sites"
	scatterWidth  = 60
)

// App is the terminal dashboard. Widget handlers run on the tview event
// loop and drive the dispatcher synchronously, so renderers may touch the
// views directly.
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	statusBar *tview.TextView

	siteDropDown *tview.DropDown
	minDropDown  *tview.DropDown
	maxDropDown  *tview.DropDown
	pieView      *tview.TextView
	scatterView  *tview.TextView

	focusableItems []tview.Primitive
	currentFocus   int

	title      string
	dataset    *dataset.Dataset
	marks      []float64
	dispatcher *reactive.Dispatcher
	logger     *slog.Logger
}

// Options configures an App
type Options struct {
	Title   string
	Dataset *dataset.Dataset
	// Querier defaults to a query.Cache over Dataset
	Querier query.Querier
	Slider  config.SliderConfig
	Logger  *slog.Logger
}

// NewApp builds the dashboard widgets, binds them to the dependency table
// and renders the initial charts.
func NewApp(opts Options) (*App, error) {
	q := opts.Querier
	if q == nil {
		q = query.NewCache(opts.Dataset)
	}
	if opts.Logger == nil {
		opts.Logger = logging.New("tui")
	}
	if opts.Title == "" {
		opts.Title = config.DefaultTitle
	}
	if opts.Slider.Step <= 0 && opts.Slider.Max == 0 {
		opts.Slider = config.SliderConfig{
			Min:  config.DefaultSliderMin,
			Max:  config.DefaultSliderMax,
			Step: config.DefaultSliderStep,
		}
	}

	a := &App{
		app:     tview.NewApplication(),
		pages:   tview.NewPages(),
		title:   opts.Title,
		dataset: opts.Dataset,
		marks:   opts.Slider.Marks(),
		logger:  opts.Logger,
	}

	initial := query.Selection{
		Site:    query.AllSites,
		Payload: query.PayloadRange{Min: a.marks[0], Max: a.marks[len(a.marks)-1]},
	}
	a.dispatcher = reactive.NewDispatcher(reactive.DashboardTable(q), initial)

	a.setupUI()

	if err := a.dispatcher.Bind(reactive.PieCell, reactive.RendererFunc(a.renderPie)); err != nil {
		return nil, fmt.Errorf("binding pie view: %w", err)
	}
	if err := a.dispatcher.Bind(reactive.ScatterCell, reactive.RendererFunc(a.renderScatter)); err != nil {
		return nil, fmt.Errorf("binding scatter view: %w", err)
	}
	if err := a.dispatcher.Refresh(); err != nil {
		return nil, fmt.Errorf("rendering initial charts: %w", err)
	}
	a.updateStatusBar()

	return a, nil
}

func (a *App) renderPie(spec query.ChartSpec) error {
	summary, ok := spec.(query.SuccessSummary)
	if !ok {
		return fmt.Errorf("pie view cannot render %s chart", spec.Kind())
	}
	a.pieView.SetText(RenderPie(summary))
	return nil
}

func (a *App) renderScatter(spec query.ChartSpec) error {
	series, ok := spec.(query.ScatterSeries)
	if !ok {
		return fmt.Errorf("scatter view cannot render %s chart", spec.Kind())
	}
	a.scatterView.SetText(RenderScatter(series, scatterWidth))
	a.scatterView.ScrollToBeginning()
	return nil
}

// setupUI initializes the user interface
func (a *App) setupUI() {
	siteOptions := append([]string{allSitesLabel}, a.dataset.Sites()...)
	a.siteDropDown = tview.NewDropDown().
		SetLabel("Launch Site: ").
		SetOptions(siteOptions, nil).
		SetCurrentOption(0)

	markLabels := make([]string, len(a.marks))
	for i, m := range a.marks {
		markLabels[i] = fmt.Sprintf("%.0f", m)
	}
	a.minDropDown = tview.NewDropDown().
		SetLabel("Payload min (kg): ").
		SetOptions(markLabels, nil).
		SetCurrentOption(0)
	a.maxDropDown = tview.NewDropDown().
		SetLabel("Payload max (kg): ").
		SetOptions(markLabels, nil).
		SetCurrentOption(len(markLabels) - 1)

	// Handlers are attached after the initial options so that building
	// the widgets does not dispatch
	a.siteDropDown.SetSelectedFunc(a.onSiteSelected)
	a.minDropDown.SetSelectedFunc(a.onPayloadSelected)
	a.maxDropDown.SetSelectedFunc(a.onPayloadSelected)

	a.pieView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	a.pieView.SetBorder(true).SetTitle(" Success Pie ").SetTitleAlign(tview.AlignLeft)

	a.scatterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	a.scatterView.SetBorder(true).SetTitle(" Payload vs. Outcome ").SetTitleAlign(tview.AlignLeft)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true)
	a.statusBar.SetBorder(false)

	header := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText(fmt.Sprintf("[white::b]%s[white::-]", tview.Escape(a.title)))

	controls := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.siteDropDown, 0, 2, true).
		AddItem(a.minDropDown, 0, 1, false).
		AddItem(a.maxDropDown, 0, 1, false)

	charts := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.pieView, 0, 1, false).
		AddItem(a.scatterView, 0, 2, false)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(controls, 1, 0, true).
		AddItem(charts, 0, 1, false).
		AddItem(a.statusBar, 1, 0, false)

	a.pages.AddPage("dashboard", main, true, true)

	a.focusableItems = []tview.Primitive{a.siteDropDown, a.minDropDown, a.maxDropDown, a.pieView, a.scatterView}
	a.currentFocus = 0
	a.updateFocusBorders()

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			a.nextFocus()
			return nil
		case tcell.KeyBacktab:
			a.prevFocus()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				a.app.Stop()
				return nil
			}
		}
		return event
	})

	a.app.SetRoot(a.pages, true).SetFocus(a.siteDropDown)
}

// selectedSite maps the site dropdown label back to a selection value
func selectedSite(text string, index int) string {
	if index == 0 && text == allSitesLabel {
		return query.AllSites
	}
	return text
}

func (a *App) onSiteSelected(text string, index int) {
	site := selectedSite(text, index)
	a.logger.Debug("site selected", "site", site)
	a.report(a.dispatcher.SetSite(site))
}

// onPayloadSelected reads both bound dropdowns; a reversed pair is
// normalized by the dispatcher.
func (a *App) onPayloadSelected(string, int) {
	minIdx, _ := a.minDropDown.GetCurrentOption()
	maxIdx, _ := a.maxDropDown.GetCurrentOption()
	if minIdx < 0 || maxIdx < 0 {
		return
	}
	rng := query.PayloadRange{Min: a.marks[minIdx], Max: a.marks[maxIdx]}
	a.logger.Debug("payload range selected", "min", rng.Min, "max", rng.Max)
	a.report(a.dispatcher.SetPayloadRange(rng))
}

// report shows a dispatch error in the status bar, or the selection otherwise
func (a *App) report(err error) {
	if err != nil {
		a.logger.Error("updating charts", "error", err)
		a.statusBar.SetText(fmt.Sprintf("[red]Error:[white] %s | Press 'q' to quit", tview.Escape(err.Error())))
		return
	}
	a.updateStatusBar()
}

func (a *App) updateStatusBar() {
	sel := a.dispatcher.Selection()
	site := sel.Site
	if site == query.AllSites {
		site = allSitesLabel
	}
	a.statusBar.SetText(fmt.Sprintf(
		"[yellow]Site:[white] %s | [yellow]Payload:[white] %.0f - %.0f kg | [yellow]Records:[white] %d | Tab: next widget | q: quit",
		tview.Escape(site), sel.Payload.Min, sel.Payload.Max, a.dataset.Len()))
}

// nextFocus moves focus to the next focusable item
func (a *App) nextFocus() {
	a.currentFocus = (a.currentFocus + 1) % len(a.focusableItems)
	a.updateFocusBorders()
	a.app.SetFocus(a.focusableItems[a.currentFocus])
}

// prevFocus moves focus to the previous focusable item
func (a *App) prevFocus() {
	a.currentFocus = (a.currentFocus - 1 + len(a.focusableItems)) % len(a.focusableItems)
	a.updateFocusBorders()
	a.app.SetFocus(a.focusableItems[a.currentFocus])
}

// updateFocusBorders highlights the border of the focused chart panel
func (a *App) updateFocusBorders() {
	for i, item := range a.focusableItems {
		tv, ok := item.(*tview.TextView)
		if !ok {
			continue
		}
		if i == a.currentFocus {
			tv.SetBorderColor(tcell.ColorYellow)
		} else {
			tv.SetBorderColor(tcell.ColorWhite)
		}
	}
}

// Selection returns the selection the charts currently show
func (a *App) Selection() query.Selection {
	return a.dispatcher.Selection()
}

// Run starts the TUI application
func (a *App) Run() error {
	a.logger.Info("starting terminal dashboard", "records", a.dataset.Len())
	return a.app.Run()
}
