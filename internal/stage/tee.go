package stage

import "errors"

type tee []Surface

// Tee writes each frame to every live surface. It is live while any of
// them is.
func Tee(surfaces ...Surface) Surface {
	return tee(surfaces)
}

func (t tee) Write(f Frame) error {
	var errs []error
	for _, s := range t {
		if !s.Live() {
			continue
		}
		if err := s.Write(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t tee) Live() bool {
	for _, s := range t {
		if s.Live() {
			return true
		}
	}
	return false
}
