// 指示: miu200521358
package rigconfig

import "testing"

func TestDefaultProfileClassificationBones(t *testing.T) {
	profile := Default()

	source := profile.SourceClassificationBones()
	if len(source) != ClassificationBoneCount {
		t.Fatalf("source bone count mismatch: got=%d want=%d", len(source), ClassificationBoneCount)
	}
	if source[1] != "Hips" || source[22] != "RightToeBase" {
		t.Fatalf("source bones mismatch: %v", source)
	}

	reference := profile.ReferenceClassificationBones()
	if len(reference) != ClassificationBoneCount {
		t.Fatalf("reference bone count mismatch: got=%d want=%d", len(reference), ClassificationBoneCount)
	}
	if reference[1] != "pelvis" || reference[22] != "ball_r" {
		t.Fatalf("reference bones mismatch: %v", reference)
	}
}

func TestDefaultProfileChainDefinitionsMatchChainMapping(t *testing.T) {
	profile := Default()
	sourceChains := profile.SourceRig.ChainNames()
	referenceChains := profile.ReferenceRig.ChainNames()
	if len(sourceChains) != profile.ChainMapping.Len() {
		t.Fatalf("source chain count mismatch: got=%d want=%d", len(sourceChains), profile.ChainMapping.Len())
	}
	if len(referenceChains) != profile.ChainMapping.Len() {
		t.Fatalf("reference chain count mismatch: got=%d want=%d", len(referenceChains), profile.ChainMapping.Len())
	}
	for _, name := range referenceChains {
		mapped, ok := profile.ChainMapping.MapName(name)
		if !ok {
			t.Fatalf("reference chain should be mapped: %s", name)
		}
		found := false
		for _, sourceName := range sourceChains {
			if sourceName == mapped {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("mapped chain missing in source rig: %s", mapped)
		}
	}
}

func TestDefaultProfileFingerChains(t *testing.T) {
	profile := Default()
	want := map[string][2]string{
		"LeftIndex":  {"LeftHandIndex1", "LeftHandIndex3"},
		"RightThumb": {"RightHandThumb1", "RightHandThumb3"},
	}
	for _, chain := range profile.SourceRig.Chains {
		if expected, ok := want[chain.Name]; ok {
			if chain.StartBone != expected[0] || chain.EndBone != expected[1] {
				t.Fatalf("source finger chain mismatch: %+v", chain)
			}
		}
	}
	for _, chain := range profile.ReferenceRig.Chains {
		if chain.Name == "RightPinky" && (chain.StartBone != "pinky_01_r" || chain.EndBone != "pinky_03_r") {
			t.Fatalf("reference finger chain mismatch: %+v", chain)
		}
	}
}

func TestDefaultProfileFingerBonesAreMapped(t *testing.T) {
	profile := Default()
	for _, chain := range profile.ReferenceRig.Chains {
		if _, ok := profile.BoneMapping.MapName(chain.StartBone); !ok {
			t.Fatalf("chain start bone should be mapped: %s", chain.StartBone)
		}
	}
}
