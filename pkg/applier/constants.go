package applier

const (
	// TextureKind is the asset kind requested from the registry.
	TextureKind = "texture"

	// progressTitle is shown by progress sinks for the whole run.
	progressTitle = "Optimizing textures"

	// doneMessage accompanies the final progress update.
	doneMessage = "done"

	// Path fragments that mark an asset as UI art (case-sensitive).
	uiMarker     = "UI"
	canvasMarker = "Canvas"
)
