package undo

// Kind identifies the variant of an undo record.
type Kind uint8

// Record kinds.
const (
	KindInvalid Kind = iota
	KindImageMod
	KindImageSize
	KindImageType
	KindImageResolution
	KindImageQMask
	KindGuide
	KindMask
	KindItemRename
	KindLayerAdd
	KindLayerRemove
	KindLayerMod
	KindLayerReposition
	KindLayerDisplace
	KindLayerMaskAdd
	KindLayerMaskRemove
	KindChannelAdd
	KindChannelRemove
	KindChannelMod
	KindChannelReposition
	KindVectorsAdd
	KindVectorsRemove
	KindVectorsMod
	KindVectorsReposition
	KindFloatingSelAttach
	KindFloatingSelDetach
	KindFloatingSelRigor
	KindFloatingSelRelax
	KindTransformTool
	KindPaintTool
	KindParasiteAttach
	KindParasiteRemove
	KindCantUndo

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:           "<<invalid>>",
	KindImageMod:          "Image Mod",
	KindImageSize:         "Image Size",
	KindImageType:         "Image Type",
	KindImageResolution:   "Image Resolution",
	KindImageQMask:        "Quick Mask",
	KindGuide:             "Guide",
	KindMask:              "Selection Mask",
	KindItemRename:        "Rename Item",
	KindLayerAdd:          "New Layer",
	KindLayerRemove:       "Delete Layer",
	KindLayerMod:          "Layer Mod",
	KindLayerReposition:   "Reposition Layer",
	KindLayerDisplace:     "Move Layer",
	KindLayerMaskAdd:      "Add Layer Mask",
	KindLayerMaskRemove:   "Delete Layer Mask",
	KindChannelAdd:        "New Channel",
	KindChannelRemove:     "Delete Channel",
	KindChannelMod:        "Channel Mod",
	KindChannelReposition: "Reposition Channel",
	KindVectorsAdd:        "New Path",
	KindVectorsRemove:     "Delete Path",
	KindVectorsMod:        "Path Mod",
	KindVectorsReposition: "Reposition Path",
	KindFloatingSelAttach: "Attach Floating Selection",
	KindFloatingSelDetach: "Detach Floating Selection",
	KindFloatingSelRigor:  "Floating Selection Rigor",
	KindFloatingSelRelax:  "Floating Selection Relax",
	KindTransformTool:     "Transform Tool",
	KindPaintTool:         "Paint Tool",
	KindParasiteAttach:    "Attach Parasite",
	KindParasiteRemove:    "Remove Parasite",
	KindCantUndo:          "Not Undoable",
}

// String returns the display name of the kind.
func (k Kind) String() string {
	if k >= kindCount {
		return "Unknown"
	}
	return kindNames[k]
}

// GroupType tags a group of records that undo and redo as one step.
type GroupType uint8

// Group types. GroupNone is the "no group open" sentinel and cannot start
// a group.
const (
	GroupNone GroupType = iota
	GroupMisc
	GroupTransformCore
	GroupPaintCore
	GroupEditPaste
	GroupEditCut
	GroupFloatingSelAnchor
	GroupImageResize
	GroupImageScale
	GroupImageConvert
	GroupImageFlip
	GroupImageRotate
	GroupLayerApplyMask
	GroupLayerAddAlpha
	GroupSelection
	GroupItemProperties

	groupCount
)

var groupNames = [groupCount]string{
	GroupNone:              "<<none>>",
	GroupMisc:              "Misc",
	GroupTransformCore:     "Transform",
	GroupPaintCore:         "Paint",
	GroupEditPaste:         "Paste",
	GroupEditCut:           "Cut",
	GroupFloatingSelAnchor: "Anchor Floating Selection",
	GroupImageResize:       "Resize Canvas",
	GroupImageScale:        "Scale Image",
	GroupImageConvert:      "Convert Image",
	GroupImageFlip:         "Flip",
	GroupImageRotate:       "Rotate",
	GroupLayerApplyMask:    "Apply Layer Mask",
	GroupLayerAddAlpha:     "Add Alpha Channel",
	GroupSelection:         "Selection",
	GroupItemProperties:    "Item Properties",
}

// String returns the display name of the group type.
func (g GroupType) String() string {
	if g >= groupCount {
		return "Unknown"
	}
	return groupNames[g]
}
