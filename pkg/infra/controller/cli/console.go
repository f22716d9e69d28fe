// 指示: miu200521358
// Package cli は端末上での問い合わせと進捗表示を提供する。
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/miu200521358/mu_rig_retarget/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/minteractor"
	"golang.org/x/text/message"
)

// ErrInvalidSelection は参照スケルトン番号の入力不正を表す。
var ErrInvalidSelection = errors.New("参照スケルトンの選択が不正です")

// ConsoleOptions は端末応答の既定値を表す。
type ConsoleOptions struct {
	// ReferenceID が空でなければ問い合わせずに候補から選ぶ。
	ReferenceID string
	// AssumeYes が true なら上書き確認を省略する。
	AssumeYes bool
}

// Console は標準入出力で利用者へ問い合わせる。
type Console struct {
	in      *bufio.Reader
	out     io.Writer
	printer *message.Printer
	options ConsoleOptions
}

// NewConsole は端末応答を生成する。
func NewConsole(in io.Reader, out io.Writer, printer *message.Printer, options ConsoleOptions) *Console {
	return &Console{
		in:      bufio.NewReader(in),
		out:     out,
		printer: printer,
		options: options,
	}
}

// PickReferenceSkeleton は候補から参照スケルトンを選ばせる。空入力は中断として nil を返す。
func (c *Console) PickReferenceSkeleton(ctx context.Context, candidates []*model.Skeleton) (*model.Skeleton, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		c.println(messages.MessageNoReferenceCandidates)
		return nil, nil
	}
	if id := strings.TrimSpace(c.options.ReferenceID); id != "" {
		for _, candidate := range candidates {
			if candidate.ID == id || candidate.Name == id {
				return candidate, nil
			}
		}
		c.println(messages.MessageReferenceNotFound, id)
		return nil, nil
	}

	c.println(messages.PromptReferenceTitle)
	for i, candidate := range candidates {
		c.println(messages.PromptReferenceItem, i+1, candidate.Name, candidate.ID)
	}
	c.print(messages.PromptReferenceInput)
	answer, err := c.readLine()
	if err != nil {
		return nil, err
	}
	if answer == "" {
		return nil, nil
	}
	number, err := strconv.Atoi(answer)
	if err != nil || number < 1 || number > len(candidates) {
		c.println(messages.MessageInvalidSelection, answer)
		return nil, fmt.Errorf("%w: %s", ErrInvalidSelection, answer)
	}
	return candidates[number-1], nil
}

// ConfirmOverwrite は上書き対象を表示して続行可否を確認する。
func (c *Console) ConfirmOverwrite(ctx context.Context, assets []model.AssetRef) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.println(messages.PromptOverwriteTitle)
	for _, asset := range assets {
		c.println(messages.PromptOverwriteItem, asset.String())
	}
	if c.options.AssumeYes {
		return true, nil
	}
	c.print(messages.PromptOverwriteConfirm)
	answer, err := c.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ReportRetargetProgress は進捗を1行で表示する。
func (c *Console) ReportRetargetProgress(event minteractor.RetargetProgressEvent) {
	switch event.Type {
	case minteractor.RetargetProgressEventTypeReferenceSelected:
		c.println(messages.LogReferenceSelected, event.SkeletonName)
	case minteractor.RetargetProgressEventTypeSkeletonStarted:
		c.println(messages.LogSkeletonStarted, event.SkeletonIndex+1, event.SkeletonCount, event.SkeletonName)
	case minteractor.RetargetProgressEventTypeRootAdded:
		c.println(messages.LogRootAdded, event.SkeletonName, event.MeshCount)
	case minteractor.RetargetProgressEventTypeRigsCreated:
		c.println(messages.LogRigsCreated, event.SkeletonName)
	case minteractor.RetargetProgressEventTypeBasePoseRetargeted:
		c.println(messages.LogBasePoseDone, event.SkeletonName, event.MeshCount)
	case minteractor.RetargetProgressEventTypeSkeletonCompleted:
		c.println(messages.LogSkeletonCompleted, event.SkeletonIndex+1, event.SkeletonCount, event.SkeletonName)
	}
}

// PrintSkeletons はスケルトン一覧を表示する。
func (c *Console) PrintSkeletons(summaries []minteractor.SkeletonSummary) {
	for _, summary := range summaries {
		c.println(messages.MessageSkeletonListItem,
			summary.ID, summary.Name, summary.BoneCount, summary.IsSource, summary.IsReference)
	}
}

// PrintResult は一括リターゲットの結果を表示する。
func (c *Console) PrintResult(result *minteractor.RetargetBatchResult) {
	if result == nil {
		return
	}
	if result.Aborted {
		c.println(messages.MessageAborted)
		return
	}
	for _, skeleton := range result.Skeletons {
		name := skeleton.SkeletonName
		if name == "" {
			name = skeleton.SkeletonID
		}
		for _, warning := range skeleton.Warnings {
			c.println(messages.MessageSkeletonWarning, name, warning.String())
		}
		if skeleton.Status == minteractor.SkeletonRetargetFailed {
			c.println(messages.MessageSkeletonFailed, name, skeleton.Err)
		}
		for _, path := range skeleton.PreviewPaths {
			c.println(messages.MessagePreviewWritten, path)
		}
	}
	c.println(messages.MessageSummary,
		result.Count(minteractor.SkeletonRetargetSucceeded),
		result.Count(minteractor.SkeletonRetargetSkipped),
		result.Count(minteractor.SkeletonRetargetFailed),
	)
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("入力の読み込みに失敗しました: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) print(key string, params ...any) {
	c.printer.Fprintf(c.out, key, params...)
}

func (c *Console) println(key string, params ...any) {
	c.printer.Fprintf(c.out, key, params...)
	fmt.Fprintln(c.out)
}
