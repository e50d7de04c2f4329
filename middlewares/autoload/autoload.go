package autoload

// Import all middleware subpackages for side-effect registration.
import (
	_ "reactcalc/middlewares/tokenbudget"
	_ "reactcalc/middlewares/turnlimit"
)
