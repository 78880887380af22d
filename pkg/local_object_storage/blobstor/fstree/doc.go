/*
Package fstree implements a storage subsystem that saves objects as files in FS tree.

The main concept behind it is rather simple: each object is stored as a file
in a directory. Given that handling many files in the same directory is usually
problematic for file systems objects are being put into subdirectories by their
IDs. This directory tree can have different [FSTree.Depth] and each component
of the path (single directory name) is a [FSTree.DirNameLen] number of
characters of the object ID string representation. File name then is a
leftover of object ID (after stripping [FSTree.Depth] components off of it)
concatenated with container ID.

For example, an object with ID of WCdSV7F9TnDHFmbgKY7BNCbPs6g7meaVbh6DMNXbytB
from Hh6qJ2Fa9WzSK7PESResS4mmuoZ2a47Z7F6ZvmR7AEHU container will be stored
in W/C/d/S/V directory and a name of 7F9TnDHFmbgKY7BNCbPs6g7meaVbh6DMNXbytB.Hh6qJ2Fa9WzSK7PESResS4mmuoZ2a47Z7F6ZvmR7AEHU
if the depth is 5 and the directory name length is 1.

Files contain the encoded object, ZSTD-compressed if compression is
configured. A file appears under its final name only after all data has
been written, so partially written objects are never read. Temporary files
have '#' in their names and are skipped by the iteration.
*/
package fstree
