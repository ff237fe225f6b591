package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/match"
	"github.com/decker502/tdcore/pkg/types"
	"github.com/decker502/tdcore/pkg/utils"
)

const (
	tickRate  = 60 // 与 ebiten 默认 TPS 一致
	towerSize = 30 // 塔方块边长
)

var (
	levelFlag = flag.String("level", "1", "内置关卡ID，或 .yaml 关卡文件路径")
	starFlag  = flag.Int("star", 0, "难度星级 1-3，0 使用关卡设置")
)

// 数字键选择植物，字母键选择元素
var plantKeys = map[ebiten.Key]types.PlantType{
	ebiten.Key1: types.PlantSunflower,
	ebiten.Key2: types.PlantBottleGrass,
	ebiten.Key3: types.PlantFourLeafClover,
	ebiten.Key4: types.PlantMachineGun,
	ebiten.Key5: types.PlantSniper,
	ebiten.Key6: types.PlantRocket,
	ebiten.Key7: types.PlantSunlightFlower,
}

var elementKeys = map[ebiten.Key]types.ElementType{
	ebiten.KeyG: types.ElementGold,
	ebiten.KeyF: types.ElementFire,
	ebiten.KeyE: types.ElementElectric,
	ebiten.KeyI: types.ElementIce,
	ebiten.KeyW: types.ElementWind,
}

// Viewer 调试查看器：固定 60 TPS 推进对局并绘制快照
//
// 左键种植当前植物，右键在光标处释放当前元素，
// 空格开始下一波，P 暂停，R 重开，M 让光标附近的阳光花发射。
type Viewer struct {
	m       *match.Match
	width   float64
	height  float64
	plant   types.PlantType
	element types.ElementType
	message string
}

// NewViewer 创建查看器并加载关卡
func NewViewer(m *match.Match, level *config.LevelConfig) (*Viewer, error) {
	if err := m.LoadLevel(match.LevelInput{Level: level}); err != nil {
		return nil, err
	}
	return &Viewer{
		m:       m,
		width:   level.Map.Width,
		height:  level.Map.Height,
		plant:   types.PlantBottleGrass,
		element: types.ElementIce,
	}, nil
}

func (v *Viewer) cursorCell() types.Position {
	return utils.ScreenToWorld(ebiten.CursorPosition())
}

// Update 每帧推进 1/60 秒
func (v *Viewer) Update() error {
	for key, plant := range plantKeys {
		if inpututil.IsKeyJustPressed(key) {
			v.plant = plant
		}
	}
	for key, element := range elementKeys {
		if inpututil.IsKeyJustPressed(key) {
			v.element = element
		}
	}

	at := v.cursorCell()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		v.report("place "+v.plant.String(), v.m.PlaceTower(v.plant, at))
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight):
		v.report("element "+v.element.String(), v.m.ApplyElement(v.element, at))
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		v.report("start wave", v.m.StartWave())
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		v.m.TogglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := v.m.Reset(); err != nil {
			return err
		}
		v.message = "reset"
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		v.report("manual fire", v.manualFireNear(at))
	}

	v.m.Update(1.0 / tickRate)
	v.m.Events()
	return nil
}

func (v *Viewer) manualFireNear(at types.Position) bool {
	best := uint64(0)
	bestDist := 1.0
	for _, t := range v.m.Snapshot().Towers {
		if !t.ManualReady {
			continue
		}
		dx, dy := t.Position.X-at.X, t.Position.Y-at.Y
		if d := dx*dx + dy*dy; d < bestDist {
			best, bestDist = t.ID, d
		}
	}
	if best == 0 {
		return false
	}
	return v.m.ManualFire(ecs.EntityID(best))
}

func (v *Viewer) report(action string, accepted bool) {
	if accepted {
		v.message = action
		return
	}
	v.message = fmt.Sprintf("%s rejected: %s", action, v.m.LastRejection())
}

// screen 格坐标转屏幕像素
func screen(p types.Position) (float32, float32) {
	x, y := utils.WorldToScreen(p)
	return float32(x), float32(y)
}

// px 格长度转像素
func px(f float64) float32 { return float32(f * utils.CellPixels) }

// Draw 绘制路线、格子、塔、敌人、投射物与状态栏
func (v *Viewer) Draw(dst *ebiten.Image) {
	dst.Fill(color.RGBA{R: 34, G: 40, B: 49, A: 255})
	level := v.m.Level()
	snap := v.m.Snapshot()

	road := color.RGBA{R: 120, G: 100, B: 70, A: 255}
	for _, lane := range level.Map.Lanes {
		for i := 1; i < len(lane); i++ {
			a, b := lane[i-1], lane[i]
			ax, ay := screen(a)
			bx, by := screen(b)
			vector.StrokeLine(dst, ax, ay, bx, by, px(0.6), road, true)
		}
	}
	cell := color.RGBA{R: 60, G: 90, B: 60, A: 255}
	for _, c := range level.Map.PlantableCells {
		x, y := screen(c)
		vector.StrokeRect(dst, x-towerSize/2, y-towerSize/2, towerSize, towerSize, 1, cell, false)
	}
	if c, ok := utils.NearestCell(level.Map.PlantableCells, v.cursorCell(), v.m.Catalog().Engine.PlaceTolerance); ok {
		x, y := screen(c)
		vector.StrokeRect(dst, x-towerSize/2, y-towerSize/2, towerSize, towerSize, 2, color.RGBA{R: 250, G: 204, B: 21, A: 255}, false)
	}

	for _, t := range snap.Towers {
		x, y := screen(t.Position)
		if t.Range > 0 {
			vector.StrokeCircle(dst, x, y, px(t.Range), 1, color.RGBA{R: 255, G: 255, B: 255, A: 40}, true)
		}
		vector.DrawFilledRect(dst, x-towerSize/2, y-towerSize/2, towerSize, towerSize, parseHexColor(t.Color), false)
		ebitenutil.DebugPrintAt(dst, strconv.Itoa(t.Level), int(x)-3, int(y)-8)
	}
	for _, c := range snap.Casts {
		x, y := screen(c.Position)
		vector.StrokeCircle(dst, x, y, px(0.5), 2, color.RGBA{R: 250, G: 204, B: 21, A: 255}, true)
	}
	for _, e := range snap.Enemies {
		x, y := screen(e.Position)
		clr := color.RGBA{R: 220, G: 60, B: 60, A: 255}
		if e.Slowed {
			clr = color.RGBA{R: 96, G: 165, B: 250, A: 255}
		}
		vector.DrawFilledCircle(dst, x, y, 10, clr, true)
		if e.MaxHP > 0 {
			w := float32(24 * e.HP / e.MaxHP)
			vector.DrawFilledRect(dst, x-12, y-16, w, 3, color.RGBA{R: 74, G: 222, B: 128, A: 255}, false)
		}
	}
	for _, p := range snap.Projectiles {
		x, y := screen(p.Position)
		vector.DrawFilledCircle(dst, x, y, 4, parseHexColor(p.Color), true)
	}
	for _, p := range snap.Popups {
		x, y := screen(p.Position)
		ebitenutil.DebugPrintAt(dst, strconv.Itoa(int(p.Amount)), int(x), int(y-20-float32(p.Age*30)))
	}

	hud := snap.HUD
	ebitenutil.DebugPrintAt(dst, fmt.Sprintf("t=%.1f gold=%d lives=%d wave=%d/%d active=%v running=%v outcome=%s",
		hud.Time, hud.Gold, hud.Lives, hud.WaveIndex, hud.TotalWaves, hud.WaveActive, hud.Running, snap.Outcome), 8, 6)
	ebitenutil.DebugPrintAt(dst, fmt.Sprintf("plant=%s element=%s  %s", v.plant, v.element, v.message), 8, 24)
	if len(hud.Cooldowns) > 0 {
		parts := make([]string, 0, len(hud.Cooldowns))
		for e, left := range hud.Cooldowns {
			parts = append(parts, fmt.Sprintf("%s %.0fs", e, left))
		}
		ebitenutil.DebugPrintAt(dst, "cooldowns: "+strings.Join(parts, " "), 8, 42)
	}
}

// Layout 逻辑尺寸由地图大小决定，上方留出状态栏
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(2*utils.BoardOffsetX + v.width*utils.CellPixels), int(utils.BoardOffsetY + utils.BoardOffsetX + v.height*utils.CellPixels)
}

// parseHexColor 解析 "#rrggbb"，非法输入返回白色
func parseHexColor(s string) color.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.White
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.White
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}
}

func loadLevel(arg string) (*config.LevelConfig, error) {
	if strings.HasSuffix(arg, ".yaml") || strings.HasSuffix(arg, ".yml") {
		return config.LoadLevelConfig(arg)
	}
	return config.LoadLevelByID(arg)
}

func main() {
	flag.Parse()

	level, err := loadLevel(*levelFlag)
	if err != nil {
		log.Fatalf("Failed to load level: %v", err)
	}
	if *starFlag >= 1 && *starFlag <= 3 {
		level.Options.Star = *starFlag
	}
	catalog, err := config.DefaultCatalog()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	viewer, err := NewViewer(match.New(catalog), level)
	if err != nil {
		log.Fatalf("Failed to start match: %v", err)
	}

	w, h := viewer.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("tdcore - " + level.Name)
	ebiten.SetTPS(tickRate)

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
