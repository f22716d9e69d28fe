// 指示: miu200521358
package messages

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// englishMessages は日本語キーに対する英語表記。
var englishMessages = map[string]string{
	HelpUsage: "usage: mu_rig_retarget [-db path] [-ref id] [-yes] [-preview dir] [-list] skeleton-id...",

	PromptReferenceTitle:   "Select the reference skeleton",
	PromptReferenceItem:    "  %d: %s (%s)",
	PromptReferenceInput:   "Enter a number (empty to abort): ",
	PromptOverwriteTitle:   "The following assets will be overwritten",
	PromptOverwriteItem:    "  %s",
	PromptOverwriteConfirm: "Continue? [y/N]: ",

	MessageSkeletonIDsRequired:   "specify at least one skeleton id",
	MessageNoReferenceCandidates: "no reference skeleton candidates",
	MessageReferenceNotFound:     "reference skeleton is not a candidate: %s",
	MessageInvalidSelection:      "invalid number: %s",
	MessageAborted:               "aborted",
	MessageSummary:               "done: %d succeeded / %d skipped / %d failed",
	MessageSkeletonWarning:       "warning: %s: %s",
	MessageSkeletonFailed:        "error: %s: %v",
	MessagePreviewWritten:        "preview: %s",
	MessageSkeletonListItem:      "%s\t%s\tbones=%d\tmixamo=%t\tmannequin=%t",

	LogReferenceSelected: "reference skeleton: %s",
	LogSkeletonStarted:   "skeleton started (%d/%d): %s",
	LogRootAdded:         "root bone added: %s (%d meshes)",
	LogRigsCreated:       "IK rigs created: %s",
	LogBasePoseDone:      "base pose retargeted: %s (%d meshes)",
	LogSkeletonCompleted: "skeleton completed (%d/%d): %s",
}

// NewCatalog は日本語と英語のメッセージカタログを生成する。日本語はキーをそのまま使う。
func NewCatalog() (catalog.Catalog, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.Japanese))
	for key, english := range englishMessages {
		if err := builder.SetString(language.Japanese, key, key); err != nil {
			return nil, err
		}
		if err := builder.SetString(language.English, key, english); err != nil {
			return nil, err
		}
	}
	return builder, nil
}

// NewPrinter はロケール文字列に合うプリンタを返す。未対応ロケールは日本語。
func NewPrinter(locale string) (*message.Printer, error) {
	cat, err := NewCatalog()
	if err != nil {
		return nil, err
	}
	tag := language.Japanese
	if parsed, err := language.Parse(locale); err == nil {
		if base, _ := parsed.Base(); base.String() == "en" {
			tag = language.English
		}
	}
	return message.NewPrinter(tag, message.Catalog(cat)), nil
}
