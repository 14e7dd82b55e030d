package version

import "runtime/debug"

// Set via -ldflags at release build time; dev builds fall back to
// whatever runtime/debug can recover from VCS stamps.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate string
)

const AppName = "yente"

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	VCSDirty  *bool  `json:"vcs_dirty,omitempty"`
}

func Get() Info {
	out := Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		out.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if out.Commit == "none" && s.Value != "" {
					out.Commit = s.Value
				}
			case "vcs.time":
				if out.BuildDate == "" && s.Value != "" {
					out.BuildDate = s.Value
				}
			case "vcs.modified":
				switch s.Value {
				case "true":
					v := true
					out.VCSDirty = &v
				case "false":
					v := false
					out.VCSDirty = &v
				}
			}
		}
	}

	return out
}
