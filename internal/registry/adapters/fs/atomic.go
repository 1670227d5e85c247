package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// tmpNodePattern nombra los temporales de escritura. Son archivos, así que el
// listado de hijos (solo directorios) nunca los ve.
const tmpNodePattern = ".node-*.tmp"

// replaceNodeFile reemplaza el _node.yaml de dir sin dejar nunca un nodo a medio
// escribir: los lectores ven la versión anterior o la nueva completa.
func replaceNodeFile(dir string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, tmpNodePattern)
	if err != nil {
		return fmt.Errorf("create temp node: %w", err)
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(0o600); err != nil {
		return fmt.Errorf("chmod temp node: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp node: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp node: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp node: %w", err)
	}

	target := filepath.Join(dir, nodeFile)
	if err := os.Rename(tmp.Name(), target); err != nil {
		// En Windows rename no pisa un destino abierto por otro proceso.
		_ = os.Remove(target)
		if retry := os.Rename(tmp.Name(), target); retry != nil {
			return fmt.Errorf("rename node: %w", retry)
		}
	}
	renamed = true
	return nil
}
