package messages

import (
	"testing"

	"golang.org/x/text/language"
)

func TestEnglishCatalogCoversAllKeys(t *testing.T) {
	keys := []string{
		HelpUsage,
		PromptReferenceTitle,
		PromptReferenceItem,
		PromptReferenceInput,
		PromptOverwriteTitle,
		PromptOverwriteItem,
		PromptOverwriteConfirm,
		MessageSkeletonIDsRequired,
		MessageNoReferenceCandidates,
		MessageReferenceNotFound,
		MessageInvalidSelection,
		MessageAborted,
		MessageSummary,
		MessageSkeletonWarning,
		MessageSkeletonFailed,
		MessagePreviewWritten,
		MessageSkeletonListItem,
		LogReferenceSelected,
		LogSkeletonStarted,
		LogRootAdded,
		LogRigsCreated,
		LogBasePoseDone,
		LogSkeletonCompleted,
	}

	seen := map[string]struct{}{}
	for _, key := range keys {
		if key == "" {
			t.Fatalf("key should not be empty")
		}
		if _, exists := seen[key]; exists {
			t.Fatalf("key should be unique: %s", key)
		}
		seen[key] = struct{}{}
		if _, ok := englishMessages[key]; !ok {
			t.Fatalf("english message missing: %s", key)
		}
	}
	if len(englishMessages) != len(keys) {
		t.Fatalf("catalog size mismatch: got=%d want=%d", len(englishMessages), len(keys))
	}
}

func TestNewPrinterSelectsLocale(t *testing.T) {
	english, err := NewPrinter("en-US")
	if err != nil {
		t.Fatalf("printer build failed: %v", err)
	}
	if got := english.Sprintf(MessageSummary, 1, 2, 3); got != "done: 1 succeeded / 2 skipped / 3 failed" {
		t.Fatalf("english message mismatch: got=%s", got)
	}

	japanese, err := NewPrinter("")
	if err != nil {
		t.Fatalf("printer build failed: %v", err)
	}
	if got := japanese.Sprintf(MessageSummary, 1, 2, 3); got != "完了: 成功 1 件 / スキップ 2 件 / 失敗 3 件" {
		t.Fatalf("japanese message mismatch: got=%s", got)
	}
}

func TestCatalogLanguages(t *testing.T) {
	cat, err := NewCatalog()
	if err != nil {
		t.Fatalf("catalog build failed: %v", err)
	}
	found := map[language.Tag]bool{}
	for _, tag := range cat.Languages() {
		found[tag] = true
	}
	if !found[language.English] || !found[language.Japanese] {
		t.Fatalf("catalog languages mismatch: got=%v", cat.Languages())
	}
}
