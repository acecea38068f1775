package config

const (
	defaultInputFile   = "input_ids.txt"
	defaultOutputFile  = "results.json"
	defaultLogDir      = "~/.local/share/seasonmap/logs"
	defaultTMDBBaseURL = "https://api.themoviedb.org/3"
	defaultAniListURL  = "https://graphql.anilist.co"
	defaultMappingURL  = "https://raw.githubusercontent.com/Fribb/anime-lists/master/anime-list-full.json"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"

	defaultLogFileMaxSizeMB  = 20
	defaultLogFileMaxBackups = 3
	defaultLogFileMaxAgeDays = 30

	// AniList is temporarily limited to 30 requests/min; one item costs one
	// AniList call, so 2.1s keeps a full batch under the limit.
	defaultItemDelayMS = 2100
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputFile:  defaultInputFile,
			OutputFile: defaultOutputFile,
			LogDir:     defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL: defaultTMDBBaseURL,
		},
		AniList: AniList{
			URL: defaultAniListURL,
		},
		Mapping: Mapping{
			URL: defaultMappingURL,
		},
		Workflow: Workflow{
			ItemDelayMS: defaultItemDelayMS,
		},
		Logging: Logging{
			Format:         defaultLogFormat,
			Level:          defaultLogLevel,
			FileMaxSizeMB:  defaultLogFileMaxSizeMB,
			FileMaxBackups: defaultLogFileMaxBackups,
			FileMaxAgeDays: defaultLogFileMaxAgeDays,
		},
	}
}
