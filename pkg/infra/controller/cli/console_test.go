package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/miu200521358/mu_rig_retarget/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/minteractor"
)

func newTestConsole(t *testing.T, input string, options ConsoleOptions) (*Console, *bytes.Buffer) {
	t.Helper()
	printer, err := messages.NewPrinter("en")
	if err != nil {
		t.Fatalf("printer build failed: %v", err)
	}
	out := bytes.NewBuffer(nil)
	return NewConsole(strings.NewReader(input), out, printer, options), out
}

func testCandidates() []*model.Skeleton {
	return []*model.Skeleton{
		{ID: "ue4", Name: "SK_Mannequin"},
		{ID: "ue4-b", Name: "SK_Mannequin_B"},
	}
}

func TestPickReferenceSkeletonByNumber(t *testing.T) {
	console, out := newTestConsole(t, "2\n", ConsoleOptions{})
	got, err := console.PickReferenceSkeleton(context.Background(), testCandidates())
	if err != nil {
		t.Fatalf("pick failed: %v", err)
	}
	if got == nil || got.ID != "ue4-b" {
		t.Fatalf("picked skeleton mismatch: got=%+v", got)
	}
	if !strings.Contains(out.String(), "2: SK_Mannequin_B (ue4-b)") {
		t.Fatalf("candidate list mismatch: got=%s", out.String())
	}
}

func TestPickReferenceSkeletonEmptyAborts(t *testing.T) {
	console, _ := newTestConsole(t, "\n", ConsoleOptions{})
	got, err := console.PickReferenceSkeleton(context.Background(), testCandidates())
	if err != nil || got != nil {
		t.Fatalf("empty answer should abort: got=%+v err=%v", got, err)
	}
}

func TestPickReferenceSkeletonInvalidNumber(t *testing.T) {
	console, _ := newTestConsole(t, "9\n", ConsoleOptions{})
	_, err := console.PickReferenceSkeleton(context.Background(), testCandidates())
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection: got=%v", err)
	}
}

func TestPickReferenceSkeletonByOption(t *testing.T) {
	console, out := newTestConsole(t, "", ConsoleOptions{ReferenceID: "SK_Mannequin"})
	got, err := console.PickReferenceSkeleton(context.Background(), testCandidates())
	if err != nil || got == nil || got.ID != "ue4" {
		t.Fatalf("picked skeleton mismatch: got=%+v err=%v", got, err)
	}

	console, out = newTestConsole(t, "", ConsoleOptions{ReferenceID: "missing"})
	got, err = console.PickReferenceSkeleton(context.Background(), testCandidates())
	if err != nil || got != nil {
		t.Fatalf("unknown reference should abort: got=%+v err=%v", got, err)
	}
	if !strings.Contains(out.String(), "reference skeleton is not a candidate: missing") {
		t.Fatalf("message mismatch: got=%s", out.String())
	}
}

func TestConfirmOverwrite(t *testing.T) {
	assets := []model.AssetRef{{Kind: model.AssetKindIKRig, PackagePath: "/Game/A", Name: "IK_A"}}
	cases := []struct {
		input   string
		options ConsoleOptions
		want    bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "", want: false},
		{input: "", options: ConsoleOptions{AssumeYes: true}, want: true},
	}
	for _, tc := range cases {
		console, out := newTestConsole(t, tc.input, tc.options)
		got, err := console.ConfirmOverwrite(context.Background(), assets)
		if err != nil {
			t.Fatalf("confirm failed: %v", err)
		}
		if got != tc.want {
			t.Fatalf("confirm mismatch: input=%q got=%v want=%v", tc.input, got, tc.want)
		}
		if !strings.Contains(out.String(), "/Game/A/IK_A") {
			t.Fatalf("asset list mismatch: got=%s", out.String())
		}
	}
}

func TestPrintResultSummary(t *testing.T) {
	console, out := newTestConsole(t, "", ConsoleOptions{})
	console.PrintResult(&minteractor.RetargetBatchResult{
		Skeletons: []minteractor.SkeletonRetargetResult{
			{SkeletonName: "SK_A", Status: minteractor.SkeletonRetargetSucceeded, PreviewPaths: []string{"/tmp/a.webp"}},
			{
				SkeletonName: "SK_B",
				Status:       minteractor.SkeletonRetargetSkipped,
				Warnings:     []model.Warning{{ID: model.RetargetWarningSelfRetarget, Message: "self"}},
			},
			{SkeletonID: "missing", Status: minteractor.SkeletonRetargetFailed, Err: errors.New("not found")},
		},
	})
	text := out.String()
	for _, want := range []string{
		"preview: /tmp/a.webp",
		"warning: SK_B: RetargetWarningSelfRetarget: self",
		"error: missing: not found",
		"done: 1 succeeded / 1 skipped / 1 failed",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output should contain %q: got=%s", want, text)
		}
	}
}

func TestReportRetargetProgress(t *testing.T) {
	console, out := newTestConsole(t, "", ConsoleOptions{})
	console.ReportRetargetProgress(minteractor.RetargetProgressEvent{
		Type:          minteractor.RetargetProgressEventTypeSkeletonStarted,
		SkeletonName:  "SK_A",
		SkeletonIndex: 0,
		SkeletonCount: 2,
	})
	if got := out.String(); got != "skeleton started (1/2): SK_A\n" {
		t.Fatalf("progress output mismatch: got=%q", got)
	}
}
