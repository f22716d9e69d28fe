package model

import "testing"

func TestRetargetWarningIDsAreNonEmptyAndUnique(t *testing.T) {
	warningIDs := []string{
		RetargetWarningSelfRetarget,
		RetargetWarningRootAtWrongPosition,
		RetargetWarningMorphTargetsUnsupported,
		RetargetWarningAlternateInfluencesUnsupported,
		RetargetWarningNotSourceFamily,
		RetargetWarningNoMeshes,
		RetargetWarningChainSkipped,
		RetargetWarningPreferredAngleSkipped,
		RetargetWarningPreviewFailed,
	}

	seen := map[string]struct{}{}
	for _, warningID := range warningIDs {
		if warningID == "" {
			t.Fatalf("warning id should not be empty")
		}
		if _, exists := seen[warningID]; exists {
			t.Fatalf("warning id should be unique: %s", warningID)
		}
		seen[warningID] = struct{}{}
	}
}

func TestNewWarningFormatsMessage(t *testing.T) {
	warning := NewWarning(RetargetWarningNoMeshes, "skeleton=%s", "SK_Hero")
	if warning.String() != "RetargetWarningNoMeshes: skeleton=SK_Hero" {
		t.Fatalf("warning string mismatch: got=%s", warning.String())
	}
}
