package http

// User-facing notices.
const (
	msgLoginRequired   = "Silakan login terlebih dahulu"
	msgAdminOnly       = "Akses ditolak. Hanya admin yang dapat mengakses halaman ini."
	msgReadOnly        = "Akses ditolak. Akun Anda hanya memiliki akses lihat."
	msgLoginSeed       = "Login berhasil!"
	msgWelcome         = "Selamat datang, %s!"
	msgBadCredentials  = "Username atau password salah"
	msgLoggedOut       = "Anda telah logout"
	msgLoadFailed      = "Gagal memuat data, silakan coba lagi"
	msgDatabaseError   = "Database connection error"
	msgInvalidFilter   = "Filter tidak valid"
	msgInvalidInput    = "Data tidak valid: %v"
	msgTxAdded         = "Transaksi berhasil ditambahkan"
	msgTxUpdated       = "Transaksi berhasil diupdate"
	msgTxNotFound      = "Transaksi tidak ditemukan"
	msgUserAdded       = "User %s berhasil ditambahkan"
	msgUserExists      = "Username %s sudah ada"
	msgUserUpdated     = "User berhasil diupdate"
	msgUserNotFound    = "User tidak ditemukan"
	msgSelfDelete      = "Tidak dapat menghapus user sendiri"
	msgProductAdded    = "Produk %s berhasil ditambahkan"
	msgProductUpdated  = "Produk berhasil diupdate"
	msgProductNotFound = "Produk tidak ditemukan"
	msgPDFNotAvailable = "Fitur export PDF akan segera tersedia"
	msgTooManyAttempts = "Terlalu banyak percobaan login, coba lagi dalam satu menit"
)
