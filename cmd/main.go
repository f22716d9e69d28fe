// 指示: miu200521358
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/miu200521358/mu_rig_retarget/pkg/adapter/io_asset/sqlite"
	"github.com/miu200521358/mu_rig_retarget/pkg/adapter/io_preview/posepreview"
	"github.com/miu200521358/mu_rig_retarget/pkg/adapter/io_rig/pbik"
	"github.com/miu200521358/mu_rig_retarget/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_rig_retarget/pkg/infra/config"
	"github.com/miu200521358/mu_rig_retarget/pkg/infra/controller/cli"
	"github.com/miu200521358/mu_rig_retarget/pkg/shared/logging"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/port/moutput"
)

// errSkeletonsFailed は失敗したスケルトンがあることを表す。
var errSkeletonsFailed = errors.New("リターゲットに失敗したスケルトンがあります")

// options はCLI引数を保持する。
type options struct {
	flags       config.Flags
	referenceID string
	assumeYes   bool
	list        bool
	skeletonIDs []string
}

// main はMixamo系統スケルトンのリターゲットを実行する。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(ctx context.Context, args []string, in io.Reader, out io.Writer, errOut io.Writer) error {
	opts, err := parseOptions(args, errOut)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Resolve(opts.flags)

	logger := logging.NewLogger(errOut)
	logger.SetLevel(logging.ParseLogLevel(cfg.LogLevel))
	logging.SetDefaultLogger(logger)

	printer, err := messages.NewPrinter(cfg.Locale)
	if err != nil {
		return fmt.Errorf("メッセージカタログの生成に失敗しました: %w", err)
	}
	if !opts.list && len(opts.skeletonIDs) == 0 {
		printer.Fprintln(errOut, printer.Sprintf(messages.HelpUsage))
		return errors.New(printer.Sprintf(messages.MessageSkeletonIDsRequired))
	}

	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	console := cli.NewConsole(in, out, printer, cli.ConsoleOptions{
		ReferenceID: opts.referenceID,
		AssumeYes:   opts.assumeYes,
	})
	var renderer moutput.IPreviewRenderer
	if cfg.PreviewEnabled() {
		previewRenderer, err := posepreview.NewRenderer(cfg.PreviewDir, cfg.PreviewSize, posepreview.Format(cfg.PreviewFormat))
		if err != nil {
			return err
		}
		renderer = previewRenderer
	}
	usecase := minteractor.NewRetargetUsecase(minteractor.RetargetUsecaseDeps{
		AssetStore:      store,
		RigBuilder:      pbik.NewRigBuilder(),
		UserInteraction: console,
		PreviewRenderer: renderer,
	})

	if opts.list {
		summaries, err := usecase.ListSkeletons(ctx)
		if err != nil {
			return err
		}
		console.PrintSkeletons(summaries)
		return nil
	}

	logger.Info("[mu_rig_retarget] リターゲット開始: db=%s skeletons=%d", cfg.DBPath, len(opts.skeletonIDs))
	result, err := usecase.RetargetSkeletons(ctx, minteractor.RetargetRequest{
		SkeletonIDs:      opts.skeletonIDs,
		ProgressReporter: console,
		PreviewEnabled:   renderer != nil,
	})
	console.PrintResult(result)
	if err != nil {
		return err
	}
	if result.Count(minteractor.SkeletonRetargetFailed) > 0 {
		return errSkeletonsFailed
	}
	return nil
}

// parseOptions はCLI引数を解析する。
func parseOptions(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("mu_rig_retarget", flag.ContinueOnError)
	fs.SetOutput(errOut)

	db := fs.String("db", "", "アセットDBのパス (既定: 環境変数 MU_RETARGET_DB)")
	ref := fs.String("ref", "", "参照スケルトンのIDまたは名前 (未指定時は対話で選択)")
	yes := fs.Bool("yes", false, "上書き確認を省略する")
	preview := fs.String("preview", "", "ベースポーズのプレビュー出力先ディレクトリ")
	locale := fs.String("locale", "", "表示言語 (ja / en)")
	list := fs.Bool("list", false, "スケルトン一覧を表示する")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	return options{
		flags: config.Flags{
			DBPath:     *db,
			PreviewDir: *preview,
			Locale:     *locale,
		},
		referenceID: *ref,
		assumeYes:   *yes,
		list:        *list,
		skeletonIDs: fs.Args(),
	}, nil
}
