//go:build !android

package main

import (
	"log"

	"github.com/jeefxM/STB-World/client/internal/game"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	game.SetPlatform("desktop")
	ebiten.SetWindowTitle("Spot the Ball")
	ebiten.SetWindowSize(game.ScreenW, game.ScreenH)
	if err := ebiten.RunGame(game.New()); err != nil {
		log.Fatal(err)
	}
}
