package internal

// EnvPrefix is a prefix of ENV variables related
// to storage node configuration.
const EnvPrefix = "kestrel"

// EnvSeparator is a section separator in ENV variables.
const EnvSeparator = "_"
