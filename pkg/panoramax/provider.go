package panoramax

// Provider is an organization or person that produced an image.
type Provider struct {
	ID    string
	Name  string
	Roles []string
}
