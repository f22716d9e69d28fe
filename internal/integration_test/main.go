// 指示: miu200521358
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/miu200521358/mu_rig_retarget/internal/testfixture"
	"github.com/miu200521358/mu_rig_retarget/pkg/adapter/io_asset/sqlite"
	"github.com/miu200521358/mu_rig_retarget/pkg/adapter/io_preview/posepreview"
	"github.com/miu200521358/mu_rig_retarget/pkg/adapter/io_rig/pbik"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/minteractor"
)

const (
	batchOutputDirMode = 0o755
	referenceID        = "mannequin"
)

// batchConfig はバッチ検証の実行設定を表す。
type batchConfig struct {
	OutputRoot    string
	CharacterNum  int
	PreviewFormat posepreview.Format
}

// seedEntry は検証用に登録するスケルトンとメッシュ1組を表す。
type seedEntry struct {
	Skeleton *model.Skeleton
	Meshes   []*model.SkinnedMesh
	// Retarget が true のスケルトンだけをリターゲット対象にする。
	Retarget bool
}

// autoAnswer は参照スケルトンを固定し上書きを常に許可する応答を表す。
type autoAnswer struct{}

// PickReferenceSkeleton は固定IDの候補を返す。
func (autoAnswer) PickReferenceSkeleton(_ context.Context, candidates []*model.Skeleton) (*model.Skeleton, error) {
	for _, candidate := range candidates {
		if candidate.ID == referenceID {
			return candidate, nil
		}
	}
	return nil, nil
}

// ConfirmOverwrite は常に上書きを許可する。
func (autoAnswer) ConfirmOverwrite(_ context.Context, _ []model.AssetRef) (bool, error) {
	return true, nil
}

// progressPrinter は進捗イベントを標準出力へ書き出す。
type progressPrinter struct {
	startedAt time.Time
}

// ReportRetargetProgress は経過時間付きで進捗を表示する。
func (p *progressPrinter) ReportRetargetProgress(event minteractor.RetargetProgressEvent) {
	fmt.Printf("[%6.2fs] %s skeleton=%s (%d/%d) meshes=%d\n",
		time.Since(p.startedAt).Seconds(), event.Type, event.SkeletonName,
		event.SkeletonIndex+1, event.SkeletonCount, event.MeshCount)
}

// main はフィクスチャを登録したDBで一括リターゲットを検証する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括リターゲットを実行し、終了コードを返す。
func run() int {
	config, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	caseDir := filepath.Join(config.OutputRoot, time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(caseDir, batchOutputDirMode); err != nil {
		fmt.Fprintf(os.Stderr, "出力先の作成に失敗しました: %v\n", err)
		return 2
	}

	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(caseDir, "assets.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "アセットDBを開けません: %v\n", err)
		return 2
	}
	defer store.Close()

	entries := buildSeedEntries(config.CharacterNum)
	skeletonIDs, err := seedStore(ctx, store, entries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "フィクスチャの登録に失敗しました: %v\n", err)
		return 2
	}

	renderer, err := posepreview.NewRenderer(filepath.Join(caseDir, "preview"), posepreview.DefaultSize, config.PreviewFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "プレビュー出力を生成できません: %v\n", err)
		return 2
	}
	usecase := minteractor.NewRetargetUsecase(minteractor.RetargetUsecaseDeps{
		AssetStore:      store,
		RigBuilder:      pbik.NewRigBuilder(),
		UserInteraction: autoAnswer{},
		PreviewRenderer: renderer,
	})

	startedAt := time.Now()
	result, err := usecase.RetargetSkeletons(ctx, minteractor.RetargetRequest{
		SkeletonIDs:      skeletonIDs,
		ProgressReporter: &progressPrinter{startedAt: startedAt},
		PreviewEnabled:   true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "一括リターゲットに失敗しました: %v\n", err)
		return 1
	}
	printBatchSummary(result, time.Since(startedAt), caseDir)
	if result.Aborted || result.Count(minteractor.SkeletonRetargetFailed) > 0 {
		return 1
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		return batchConfig{}, err
	}
	outputRoot := flag.String("output-root", defaultOutputRoot, "検証結果の出力ルートディレクトリ")
	characterNum := flag.Int("characters", 3, "登録するMixamoキャラクター数")
	format := flag.String("format", string(posepreview.FormatWebP), "プレビュー形式 (webp / tga)")
	flag.Parse()

	trimmedOutputRoot := strings.TrimSpace(*outputRoot)
	if trimmedOutputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}
	if *characterNum <= 0 {
		return batchConfig{}, fmt.Errorf("characters は1以上を指定してください: %d", *characterNum)
	}
	return batchConfig{
		OutputRoot:    filepath.Clean(trimmedOutputRoot),
		CharacterNum:  *characterNum,
		PreviewFormat: posepreview.Format(strings.ToLower(*format)),
	}, nil
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	return filepath.Join(filepath.Dir(currentFilePath), "output"), nil
}

// buildSeedEntries は参照・UE5マネキン・Mixamoキャラクターのフィクスチャを生成する。
// UE5マネキンは参照候補から外れることの確認用で、リターゲット対象にしない。
// 最後のキャラクターはインポート元データ付きメッシュを持つ。
func buildSeedEntries(characterNum int) []seedEntry {
	mannequin := testfixture.MannequinTopology()
	ue5 := testfixture.MannequinUE5Topology()
	entries := []seedEntry{
		{
			Skeleton: testfixture.NewSkeleton(referenceID, "SK_Mannequin", testfixture.MannequinPackagePath, mannequin),
			Meshes: []*model.SkinnedMesh{
				testfixture.NewMesh("mannequin-mesh", "SKM_Mannequin", testfixture.MannequinPackagePath, referenceID, mannequin),
			},
		},
		{
			Skeleton: testfixture.NewSkeleton("manny", "SK_Manny", "/Game/Characters/Manny", ue5),
		},
	}
	for i := 1; i <= characterNum; i++ {
		id := fmt.Sprintf("mixamo-%02d", i)
		name := fmt.Sprintf("Character%02d", i)
		packagePath := filepath.ToSlash(filepath.Join(testfixture.MixamoPackagePath, name))
		topology := testfixture.MixamoTopology()
		mesh := testfixture.NewMesh(id+"-mesh", "SKM_"+name, packagePath, id, topology)
		if i == characterNum {
			mesh = testfixture.NewImportedMesh(id+"-mesh", "SKM_"+name, packagePath, id, topology)
		}
		entries = append(entries, seedEntry{
			Skeleton: testfixture.NewSkeleton(id, "SK_"+name, packagePath, topology),
			Meshes:   []*model.SkinnedMesh{mesh},
			Retarget: true,
		})
	}
	return entries
}

// seedStore はフィクスチャを登録し、リターゲット対象のスケルトンIDを返す。
func seedStore(ctx context.Context, store *sqlite.Store, entries []seedEntry) ([]string, error) {
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := store.PutSkeleton(ctx, entry.Skeleton); err != nil {
			return nil, err
		}
		for _, mesh := range entry.Meshes {
			if err := store.PutMesh(ctx, mesh); err != nil {
				return nil, err
			}
		}
		if entry.Retarget {
			ids = append(ids, entry.Skeleton.ID)
		}
	}
	return ids, nil
}

// printBatchSummary は一括リターゲットの集計を表示する。
func printBatchSummary(result *minteractor.RetargetBatchResult, elapsed time.Duration, caseDir string) {
	fmt.Println("==== リターゲット結果 ====")
	for _, skeleton := range result.Skeletons {
		fmt.Printf("%-10s %s rigs=%d retargeters=%d warnings=%d\n",
			skeleton.Status, skeleton.SkeletonName, len(skeleton.Rigs), len(skeleton.Retargeters), len(skeleton.Warnings))
		for _, warning := range skeleton.Warnings {
			fmt.Printf("    %s\n", warning.String())
		}
		if skeleton.Err != nil {
			fmt.Printf("    err=%v\n", skeleton.Err)
		}
		for _, path := range skeleton.PreviewPaths {
			fmt.Printf("    preview=%s\n", path)
		}
	}
	fmt.Printf("成功=%d スキップ=%d 失敗=%d 経過=%s 出力=%s\n",
		result.Count(minteractor.SkeletonRetargetSucceeded),
		result.Count(minteractor.SkeletonRetargetSkipped),
		result.Count(minteractor.SkeletonRetargetFailed),
		elapsed.Round(time.Millisecond),
		caseDir,
	)
}
