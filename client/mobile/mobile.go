package mobile

import (
	"github.com/jeefxM/STB-World/client/internal/game"

	"github.com/hajimehoshi/ebiten/v2/mobile"
)

func init() {
	mobile.SetGame(game.New("android"))
}

// Dummy keeps gomobile bind happy; the package is all init side effects.
func Dummy() {}
