package game

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math/big"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/jeefxM/STB-World/client/internal/netcfg"
	"github.com/jeefxM/STB-World/shared/protocol"
)

// Logical screen, portrait phone shape.
const (
	ScreenW = 420
	ScreenH = 780
)

const (
	topBarH  = 56
	pad      = 12
	navDelay = 90 // ticks before jumping to results after a success
)

type screen int

const (
	screenConnect screen = iota
	screenGame
	screenResults
)

type connState int

const (
	stateIdle connState = iota
	stateConnecting
	stateConnected
	stateFailed
)

type connResult struct {
	bridge *WalletBridge
	wallet string
	err    error
}

type gameResult struct {
	info protocol.GameInfo
	err  error
}

type imgResult struct {
	img image.Image
	err error
}

type historyResult struct {
	subs []protocol.SubmissionView
	err  error
}

type Game struct {
	scr screen

	// wallet bridge boot
	connCh          chan connResult
	connSt          connState
	connErrMsg      string
	connRetryAt     time.Time
	connectInFlight bool

	bridge *WalletBridge
	wallet string

	// game/session boot
	gameCh        chan gameResult
	gameRequested bool
	gameErrMsg    string
	gameRetryAt   time.Time
	imgCh         chan imgResult

	session *Session
	canvas  *Canvas

	// controls
	submitBtn  button
	resetBtn   button
	historyBtn button
	backBtn    button

	successToast *toast
	errorToast   *toast
	navTicks     int

	// results screen
	history        []protocol.SubmissionView
	historyCh      chan historyResult
	historyLoading bool
	historyErr     string
	historyRects   []rect
	copiedHash     string
	copiedTicks    int
}

// New creates the app. Optional arg sets the platform ("android"/"ios"/
// "desktop"), kept for the mobile entry points.
func New(args ...string) ebiten.Game {
	if len(args) > 0 {
		switch args[0] {
		case "android", "ios", "desktop":
			platform = args[0]
		}
	}
	return &Game{
		scr:       screenConnect,
		connCh:    make(chan connResult, 4),
		gameCh:    make(chan gameResult, 1),
		imgCh:     make(chan imgResult, 1),
		historyCh: make(chan historyResult, 1),
	}
}

func (g *Game) Update() error {
	g.successToast.update()
	g.errorToast.update()
	if g.copiedTicks > 0 {
		g.copiedTicks--
	}

	switch g.scr {
	case screenConnect:
		g.updateConnect()
	case screenGame:
		g.updateGame()
	case screenResults:
		g.updateResults()
	}
	return nil
}

// ---------- Connect ----------

func (g *Game) updateConnect() {
	if g.connSt == stateIdle || (g.connSt == stateFailed && time.Now().After(g.connRetryAt)) {
		if !g.connectInFlight {
			g.connSt = stateConnecting
			g.connErrMsg = ""
			g.connRetryAt = time.Now().Add(2 * time.Second)
			g.connectInFlight = true
			go g.connectAsync()
		}
	}

	select {
	case res := <-g.connCh:
		g.connectInFlight = false
		if res.err != nil {
			g.connSt = stateFailed
			g.connErrMsg = res.err.Error()
			g.connRetryAt = time.Now().Add(2 * time.Second)
			break
		}
		g.bridge = res.bridge
		g.wallet = res.wallet
		g.connSt = stateConnected
		g.requestGame()
	default:
	}

	if g.connSt == stateConnected && !g.gameRequested && time.Now().After(g.gameRetryAt) {
		g.requestGame()
	}

	select {
	case res := <-g.gameCh:
		if res.err != nil {
			g.gameErrMsg = res.err.Error()
			g.gameRequested = false
			g.gameRetryAt = time.Now().Add(2 * time.Second)
			break
		}
		g.startSession(res.info)
	default:
	}
}

func (g *Game) connectAsync() {
	bridge, err := DialWallet(netcfg.WalletURL)
	if err != nil {
		g.connCh <- connResult{err: err}
		return
	}
	addr, err := bridge.Address()
	if err != nil {
		_ = bridge.Close()
		g.connCh <- connResult{err: err}
		return
	}
	if _, err := Login(addr); err != nil {
		_ = bridge.Close()
		g.connCh <- connResult{err: err}
		return
	}
	g.connCh <- connResult{bridge: bridge, wallet: addr}
}

func (g *Game) requestGame() {
	if g.gameRequested {
		return
	}
	g.gameRequested = true
	go func() {
		info, err := fetchGameInfo(netcfg.GameID)
		g.gameCh <- gameResult{info: info, err: err}
	}()
}

func (g *Game) startSession(info protocol.GameInfo) {
	chain := NewChainClient(netcfg.ChainRPC)
	g.session = NewSession(info.GameID, info, g.wallet, chain, g.bridge, apiClient{})
	g.canvas = NewCanvas(g.session.SetCoordinate)
	g.session.LoadContractData()
	go func() {
		img, err := fetchGameImage(info.ImageURL)
		g.imgCh <- imgResult{img: img, err: err}
	}()
	g.scr = screenGame
}

// ---------- Game ----------

func (g *Game) canvasBounds() rect {
	return rect{x: pad, y: topBarH + pad, w: ScreenW - 2*pad, h: 520}
}

func (g *Game) updateGame() {
	s := g.session
	g.canvas.SetBounds(g.canvasBounds())

	select {
	case res := <-g.imgCh:
		if res.err != nil {
			log.Printf("game image: %v", res.err)
			break
		}
		g.canvas.SetImage(ebiten.NewImageFromImage(res.img))
	default:
	}

	// One-shot contract load; retried here only after a failed read cleared
	// the session's flag.
	s.LoadContractData()

	if out := s.Poll(); out != nil {
		if out.success {
			g.successToast = showToast("Guess submitted!", color.NRGBA{16, 120, 70, 235})
			g.navTicks = navDelay
		} else {
			g.errorToast = showToast(s.TxError(), color.NRGBA{140, 30, 30, 235})
		}
	}

	if g.navTicks > 0 {
		g.navTicks--
		if g.navTicks == 0 {
			g.openResults()
			return
		}
	}

	status, statusKnown := s.Status()
	disabled := s.TxState() == TxPending || (statusKnown && !status.Playable())
	g.canvas.Update(disabled)

	g.layoutGameButtons()
	if mx, my, ok := tapAt(); ok {
		switch {
		case g.submitBtn.hit(mx, my) && !g.submitBtn.disabled:
			s.Submit()
		case g.resetBtn.hit(mx, my) && !g.resetBtn.disabled:
			s.Reset()
		case g.historyBtn.hit(mx, my):
			g.openResults()
		}
	}
}

func (g *Game) layoutGameButtons() {
	s := g.session
	y := ScreenH - 64
	g.submitBtn = button{rect: rect{x: pad, y: y, w: ScreenW - 3*pad - 110, h: 44}, label: "Place Guess"}
	if s.TxState() == TxPending {
		g.submitBtn.label = "Confirm in wallet..."
	}
	g.submitBtn.disabled = !s.CanSubmit()
	g.resetBtn = button{
		rect:     rect{x: ScreenW - pad - 110, y: y, w: 110, h: 44},
		label:    "Reset",
		disabled: s.Coord() == nil || s.TxState() == TxPending,
	}
	g.historyBtn = button{rect: rect{x: ScreenW - pad - 90, y: 10, w: 90, h: 36}, label: "History"}
}

func (g *Game) openResults() {
	g.scr = screenResults
	g.navTicks = 0
	g.historyErr = ""
	g.historyLoading = true
	go func() {
		subs, err := fetchSubmissions(g.wallet, 50)
		g.historyCh <- historyResult{subs: subs, err: err}
	}()
}

// ---------- Results ----------

func (g *Game) updateResults() {
	select {
	case res := <-g.historyCh:
		g.historyLoading = false
		if res.err != nil {
			g.historyErr = res.err.Error()
			break
		}
		g.history = res.subs
	default:
	}

	g.backBtn = button{rect: rect{x: pad, y: 10, w: 80, h: 36}, label: "Back"}
	if mx, my, ok := tapAt(); ok {
		if g.backBtn.hit(mx, my) {
			g.scr = screenGame
			return
		}
		for i, r := range g.historyRects {
			if r.hit(mx, my) && i < len(g.history) {
				hash := g.history[i].TxHash
				if err := clipboard.WriteAll(hash); err != nil {
					log.Printf("clipboard: %v", err)
					break
				}
				g.copiedHash = hash
				g.copiedTicks = 90
				break
			}
		}
	}
}

// tapAt reports a just-started tap or click this frame.
func tapAt() (int, int, bool) {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		return mx, my, true
	}
	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
		tx, ty := ebiten.TouchPosition(ids[0])
		return tx, ty, true
	}
	return 0, 0, false
}

// ---------- Draw ----------

func (g *Game) Draw(dst *ebiten.Image) {
	dst.Fill(color.NRGBA{12, 12, 18, 255})

	switch g.scr {
	case screenConnect:
		g.drawConnect(dst)
	case screenGame:
		g.drawGame(dst)
	case screenResults:
		g.drawResults(dst)
	}

	g.successToast.draw(dst, ScreenW)
	g.errorToast.draw(dst, ScreenW)
}

func (g *Game) drawConnect(dst *ebiten.Image) {
	text.Draw(dst, "Spot the Ball", basicfont.Face7x13, ScreenW/2-46, 220, color.White)

	w, h := 340, 120
	x := (ScreenW - w) / 2
	y := (ScreenH - h) / 2
	ebitenutil.DrawRect(dst, float64(x), float64(y), float64(w), float64(h), color.NRGBA{28, 28, 40, 255})

	switch {
	case g.gameErrMsg != "":
		text.Draw(dst, "Unable to load game", basicfont.Face7x13, x+20, y+40, color.NRGBA{255, 120, 120, 255})
		text.Draw(dst, trim(g.gameErrMsg, 44), basicfont.Face7x13, x+20, y+60, color.NRGBA{220, 200, 200, 255})
	case g.connSt == stateFailed:
		text.Draw(dst, "Unable to reach your wallet", basicfont.Face7x13, x+20, y+40, color.NRGBA{255, 120, 120, 255})
		if g.connErrMsg != "" {
			text.Draw(dst, trim(g.connErrMsg, 44), basicfont.Face7x13, x+20, y+60, color.NRGBA{220, 200, 200, 255})
		}
		text.Draw(dst, "Retrying...", basicfont.Face7x13, x+20, y+90, color.NRGBA{220, 220, 220, 255})
	default:
		text.Draw(dst, "Connecting to wallet...", basicfont.Face7x13, x+20, y+46, color.White)
	}
}

func (g *Game) drawGame(dst *ebiten.Image) {
	s := g.session

	// Top bar: game name, prize pool, history.
	ebitenutil.DrawRect(dst, 0, 0, ScreenW, topBarH, color.NRGBA{20, 20, 30, 255})
	text.Draw(dst, trim(s.Info().Name, 28), basicfont.Face7x13, pad, 24, color.White)
	pool := "Pool: " + fmtWei(s.PrizePool())
	text.Draw(dst, pool, basicfont.Face7x13, pad, 44, color.NRGBA{180, 180, 200, 255})
	g.historyBtn.draw(dst, color.NRGBA{40, 44, 70, 255})

	status, statusKnown := s.Status()
	disabled := s.TxState() == TxPending || (statusKnown && !status.Playable())
	g.canvas.Draw(dst, s.Coord(), statusKnown, status, disabled)

	// Bottom bar: selection + price + actions.
	infoY := ScreenH - 110
	if c := s.Coord(); c != nil {
		text.Draw(dst, fmt.Sprintf("Position: %d, %d", c.X, c.Y), basicfont.Face7x13, pad, infoY, color.White)
	} else {
		text.Draw(dst, "Tap the image to place your guess", basicfont.Face7x13, pad, infoY, color.NRGBA{170, 170, 190, 255})
	}
	price := "Entry: " + fmtWei(s.MintPrice())
	text.Draw(dst, price, basicfont.Face7x13, pad, infoY+20, color.NRGBA{180, 180, 200, 255})

	g.submitBtn.draw(dst, color.NRGBA{80, 50, 160, 255})
	g.resetBtn.draw(dst, color.NRGBA{60, 60, 80, 255})

	if s.TxState() == TxError && s.TxError() != "" {
		text.Draw(dst, trim(s.TxError(), 54), basicfont.Face7x13, pad, infoY+40, color.NRGBA{255, 120, 120, 255})
	}
}

func (g *Game) drawResults(dst *ebiten.Image) {
	ebitenutil.DrawRect(dst, 0, 0, ScreenW, topBarH, color.NRGBA{20, 20, 30, 255})
	text.Draw(dst, "Your guesses", basicfont.Face7x13, ScreenW/2-44, 32, color.White)
	g.backBtn.draw(dst, color.NRGBA{40, 44, 70, 255})

	rows := g.history
	if len(rows) == 0 && g.session != nil {
		// Fall back to the in-memory list when the backend has nothing yet.
		for _, s := range g.session.Recent() {
			rows = append(rows, protocol.SubmissionView{Submission: s})
		}
	}

	g.historyRects = g.historyRects[:0]
	y := topBarH + pad
	switch {
	case g.historyLoading:
		text.Draw(dst, "Loading...", basicfont.Face7x13, pad, y+20, color.NRGBA{170, 170, 190, 255})
	case g.historyErr != "":
		text.Draw(dst, "History unavailable", basicfont.Face7x13, pad, y+20, color.NRGBA{255, 120, 120, 255})
	case len(rows) == 0:
		text.Draw(dst, "No guesses yet", basicfont.Face7x13, pad, y+20, color.NRGBA{170, 170, 190, 255})
	}

	for _, sub := range rows {
		if y+64 > ScreenH-pad {
			break
		}
		r := rect{x: pad, y: y, w: ScreenW - 2*pad, h: 58}
		g.historyRects = append(g.historyRects, r)
		bg := color.NRGBA{26, 26, 38, 255}
		if sub.PrizeWon != nil {
			bg = color.NRGBA{30, 54, 34, 255}
		}
		ebitenutil.DrawRect(dst, float64(r.x), float64(r.y), float64(r.w), float64(r.h), bg)

		title := sub.GameName
		if title == "" {
			title = sub.GameID
		}
		text.Draw(dst, trim(title, 30), basicfont.Face7x13, r.x+10, r.y+18, color.White)
		line := fmt.Sprintf("(%d, %d)  %s", sub.XCoordinate, sub.YCoordinate, sub.CreatedAt.Format("Jan 2 15:04"))
		text.Draw(dst, line, basicfont.Face7x13, r.x+10, r.y+34, color.NRGBA{180, 180, 200, 255})

		hashLine := "tx " + trim(sub.TxHash, 24) + "  (tap to copy)"
		if g.copiedTicks > 0 && g.copiedHash == sub.TxHash {
			hashLine = "copied!"
		}
		text.Draw(dst, hashLine, basicfont.Face7x13, r.x+10, r.y+50, color.NRGBA{140, 150, 190, 255})

		if sub.PrizeWon != nil {
			text.Draw(dst, "WON "+*sub.PrizeWon, basicfont.Face7x13, r.x+r.w-110, r.y+18, color.NRGBA{120, 230, 150, 255})
		}
		y += 64
	}
}

func (g *Game) Layout(w, h int) (int, int) { return ScreenW, ScreenH }

// fmtWei renders a wei amount as a short decimal asset amount.
func fmtWei(v *big.Int) string {
	if v == nil {
		return "..."
	}
	r := new(big.Rat).SetFrac(v, big.NewInt(1_000_000_000_000_000_000))
	s := r.FloatString(4)
	// drop trailing zeros, keep at least one digit after the point
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s += "0"
	}
	return s
}
