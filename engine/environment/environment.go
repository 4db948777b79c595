package environment

// Environment is an already-materialized deployment environment. The static
// configuration variant reads its values directly instead of consulting an
// environment.conf file on disk.
type Environment struct {
	Name          string
	Manifest      string
	ModulePath    []string
	ConfigVersion string
}
