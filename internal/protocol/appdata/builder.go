package appdata

// Builder stamps the channel's constant parameters onto every turn's data.
type Builder struct {
	params Params
}

func NewBuilder(params Params) *Builder {
	return &Builder{params: params.Normalized()}
}

// Params returns a copy of the constant parameters.
func (b *Builder) Params() Params {
	return b.params.Normalized()
}

// Data builds the app data for one turn.
func (b *Builder) Data(phase Phase, reaction Reaction, suggestion string) Data {
	return Data{
		Params:     b.params.Normalized(),
		Phase:      phase,
		Reaction:   reaction,
		Suggestion: suggestion,
	}
}

// Encoded builds and ABI encodes the app data for one turn.
func (b *Builder) Encoded(phase Phase, reaction Reaction, suggestion string) ([]byte, error) {
	return Encode(b.Data(phase, reaction, suggestion))
}

// Suggest is the data of a Suggest turn.
func (b *Builder) Suggest(suggestion string) Data {
	return b.Data(Suggest, None, suggestion)
}

// React is the data of a React turn.
func (b *Builder) React(reaction Reaction) Data {
	return b.Data(React, reaction, "")
}
