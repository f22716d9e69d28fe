// 指示: miu200521358
// Package posepreview はボーン階層のポーズを棒人間の静止画として出力する。
package posepreview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Format は出力画像形式を表す。
type Format string

const (
	// FormatWebP はWebP形式。
	FormatWebP Format = "webp"
	// FormatTGA はTGA形式。
	FormatTGA Format = "tga"
)

const (
	// DefaultSize は既定の出力画像サイズ。
	DefaultSize        = 256
	defaultSupersample = 4
	marginRatio        = 0.1
	boneWidthRatio     = 0.012
	jointRadiusRatio   = 0.018
)

var (
	backgroundColor = color.NRGBA{R: 0x20, G: 0x22, B: 0x28, A: 0xff}
	boneColor       = color.NRGBA{R: 0xd8, G: 0xdc, B: 0xe4, A: 0xff}
	jointColor      = color.NRGBA{R: 0xf0, G: 0x8c, B: 0x3c, A: 0xff}
	rootColor       = color.NRGBA{R: 0x4c, G: 0xb4, B: 0xf0, A: 0xff}
)

// Renderer は正面からの正射影でポーズを描画するプレビュー出力を表す。
type Renderer struct {
	dir         string
	size        int
	supersample int
	format      Format
}

// NewRenderer はプレビュー出力を生成する。size が0以下なら DefaultSize を使う。
func NewRenderer(dir string, size int, format Format) (*Renderer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("プレビュー出力先が未指定です")
	}
	switch format {
	case "":
		format = FormatWebP
	case FormatWebP, FormatTGA:
	default:
		return nil, fmt.Errorf("未対応のプレビュー形式です: %s", format)
	}
	if size <= 0 {
		size = DefaultSize
	}
	return &Renderer{dir: dir, size: size, supersample: defaultSupersample, format: format}, nil
}

// RenderPose はポーズを描画して保存し、出力先パスを返す。
func (r *Renderer) RenderPose(name string, topology *model.Topology, pose model.Pose) (string, error) {
	img, err := r.Render(topology, pose)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("プレビュー出力先を作成できません: %w", err)
	}
	path := filepath.Join(r.dir, sanitizeFileName(name)+"."+string(r.format))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("プレビューファイルを作成できません: %w", err)
	}
	if err := r.encode(file, img); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("プレビューファイルを閉じられません: %w", err)
	}
	return path, nil
}

// Render はポーズを描画した画像を返す。
func (r *Renderer) Render(topology *model.Topology, pose model.Pose) (*image.NRGBA, error) {
	points, err := projectPose(topology, pose)
	if err != nil {
		return nil, err
	}
	canvasSize := r.size * r.supersample
	canvas := image.NewNRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	toCanvas := fitToCanvas(points, float64(canvasSize))
	boneWidth := float32(float64(canvasSize) * boneWidthRatio)
	jointRadius := float32(float64(canvasSize) * jointRadiusRatio)

	bones := vector.NewRasterizer(canvasSize, canvasSize)
	for i, joint := range topology.Joints {
		if joint.ParentIndex < 0 {
			continue
		}
		addSegment(bones, toCanvas(points[joint.ParentIndex]), toCanvas(points[i]), boneWidth)
	}
	bones.Draw(canvas, canvas.Bounds(), image.NewUniform(boneColor), image.Point{})

	joints := vector.NewRasterizer(canvasSize, canvasSize)
	roots := vector.NewRasterizer(canvasSize, canvasSize)
	for i, joint := range topology.Joints {
		if joint.ParentIndex < 0 {
			addDiamond(roots, toCanvas(points[i]), jointRadius*1.5)
			continue
		}
		addDiamond(joints, toCanvas(points[i]), jointRadius)
	}
	joints.Draw(canvas, canvas.Bounds(), image.NewUniform(jointColor), image.Point{})
	roots.Draw(canvas, canvas.Bounds(), image.NewUniform(rootColor), image.Point{})

	if r.supersample == 1 {
		return canvas, nil
	}
	result := image.NewNRGBA(image.Rect(0, 0, r.size, r.size))
	draw.CatmullRom.Scale(result, result.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return result, nil
}

func (r *Renderer) encode(w io.Writer, img image.Image) error {
	switch r.format {
	case FormatTGA:
		if err := tga.Encode(w, img); err != nil {
			return fmt.Errorf("TGAの書き込みに失敗しました: %w", err)
		}
	default:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("WebPの書き込みに失敗しました: %w", err)
		}
	}
	return nil
}

// projectPose はコンポーネント空間の関節位置を前方から見たXZ平面へ射影する。
func projectPose(topology *model.Topology, pose model.Pose) ([]mgl64.Vec2, error) {
	if topology == nil {
		return nil, fmt.Errorf("プレビュー対象の階層がnilです")
	}
	if len(pose) != topology.Len() {
		return nil, fmt.Errorf("ポーズ長が階層と一致しません: pose=%d bones=%d", len(pose), topology.Len())
	}
	global := make([]mmath.Transform, topology.Len())
	points := make([]mgl64.Vec2, topology.Len())
	for i, joint := range topology.Joints {
		if joint.ParentIndex < 0 {
			global[i] = pose[i]
		} else {
			global[i] = pose[i].Mul(global[joint.ParentIndex])
		}
		position := global[i].Translation
		points[i] = mgl64.Vec2{position.X(), position.Z()}
	}
	return points, nil
}

// fitToCanvas は全関節が余白付きで収まる画像座標への変換を返す。上方向は画像の上。
func fitToCanvas(points []mgl64.Vec2, canvasSize float64) func(mgl64.Vec2) mgl64.Vec2 {
	if len(points) == 0 {
		return func(p mgl64.Vec2) mgl64.Vec2 { return p }
	}
	minPoint, maxPoint := points[0], points[0]
	for _, p := range points[1:] {
		minPoint = mgl64.Vec2{math.Min(minPoint.X(), p.X()), math.Min(minPoint.Y(), p.Y())}
		maxPoint = mgl64.Vec2{math.Max(maxPoint.X(), p.X()), math.Max(maxPoint.Y(), p.Y())}
	}
	extent := math.Max(maxPoint.X()-minPoint.X(), maxPoint.Y()-minPoint.Y())
	usable := canvasSize * (1 - 2*marginRatio)
	scale := 1.0
	if extent > 0 {
		scale = usable / extent
	}
	center := minPoint.Add(maxPoint).Mul(0.5)
	half := canvasSize / 2
	return func(p mgl64.Vec2) mgl64.Vec2 {
		offset := p.Sub(center).Mul(scale)
		return mgl64.Vec2{half + offset.X(), half - offset.Y()}
	}
}

// addSegment は幅を持つ線分を四角形として追加する。
func addSegment(z *vector.Rasterizer, from, to mgl64.Vec2, width float32) {
	direction := to.Sub(from)
	if direction.Len() == 0 {
		return
	}
	normal := mgl64.Vec2{-direction.Y(), direction.X()}.Normalize().Mul(float64(width) / 2)
	z.MoveTo(float32(from.X()+normal.X()), float32(from.Y()+normal.Y()))
	z.LineTo(float32(to.X()+normal.X()), float32(to.Y()+normal.Y()))
	z.LineTo(float32(to.X()-normal.X()), float32(to.Y()-normal.Y()))
	z.LineTo(float32(from.X()-normal.X()), float32(from.Y()-normal.Y()))
	z.ClosePath()
}

// addDiamond は関節位置に菱形を追加する。
func addDiamond(z *vector.Rasterizer, center mgl64.Vec2, radius float32) {
	x, y := float32(center.X()), float32(center.Y())
	z.MoveTo(x, y-radius)
	z.LineTo(x+radius, y)
	z.LineTo(x, y+radius)
	z.LineTo(x-radius, y)
	z.ClosePath()
}

// sanitizeFileName はファイル名に使えない文字を "_" に置き換える。
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "pose"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
