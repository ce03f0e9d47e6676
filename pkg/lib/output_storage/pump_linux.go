package output_storage

import "golang.org/x/sys/unix"

// Linux names FIONREAD TIOCINQ; it works on pipes as well as ttys.
const fionread = unix.TIOCINQ
