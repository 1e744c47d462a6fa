package seed

import "github.com/appdotbuilder/pc-part-shop/internal/models"

type categorySeed struct {
	category models.Category
	products []models.Product
}

func part(name, slug, sku, brand, short, listPrice string, stock int, specs map[string]any) models.Product {
	return models.Product{
		Name:             name,
		Slug:             slug,
		SKU:              sku,
		Brand:            brand,
		ShortDescription: short,
		Description:      short,
		Price:            price(listPrice),
		StockQuantity:    stock,
		ManageStock:      true,
		IsActive:         true,
		Images:           []string{"/images/products/" + slug + ".jpg"},
		Specifications:   specs,
	}
}

func featured(p models.Product) models.Product {
	p.IsFeatured = true
	return p
}

func onSale(p models.Product, salePrice string) models.Product {
	p.SalePrice = sale(salePrice)
	return p
}

var catalogue = []categorySeed{
	{
		category: models.Category{Name: "Graphics Cards", Slug: "graphics-cards", SortOrder: 1,
			Description: "High-performance GPUs for gaming and professional work"},
		products: []models.Product{
			featured(part("GeForce RTX 4070 Super", "geforce-rtx-4070-super", "GPU-NV-4070S", "NVIDIA",
				"12GB GDDR6X card for 1440p gaming.", "599.99", 12,
				map[string]any{"memory": "12GB GDDR6X", "boost_clock": "2475 MHz", "tdp": "220W"})),
			onSale(part("Radeon RX 7800 XT", "radeon-rx-7800-xt", "GPU-AMD-7800XT", "AMD",
				"16GB RDNA 3 card.", "499.99", 8,
				map[string]any{"memory": "16GB GDDR6", "boost_clock": "2430 MHz", "tdp": "263W"}), "469.99"),
			part("Arc A770", "arc-a770", "GPU-INTEL-A770", "Intel",
				"16GB entry card with AV1 encode.", "329.99", 5,
				map[string]any{"memory": "16GB GDDR6", "tdp": "225W"}),
		},
	},
	{
		category: models.Category{Name: "Processors", Slug: "processors", SortOrder: 2,
			Description: "CPUs from Intel and AMD"},
		products: []models.Product{
			featured(part("Ryzen 7 7800X3D", "ryzen-7-7800x3d", "CPU-AMD-7800X3D", "AMD",
				"8-core AM5 processor with 3D V-Cache.", "449.00", 15,
				map[string]any{"cores": 8, "threads": 16, "socket": "AM5"})),
			part("Core i7-14700K", "core-i7-14700k", "CPU-INTEL-14700K", "Intel",
				"20-core LGA1700 processor.", "409.99", 10,
				map[string]any{"cores": 20, "threads": 28, "socket": "LGA1700"}),
			onSale(part("Ryzen 5 7600", "ryzen-5-7600", "CPU-AMD-7600", "AMD",
				"6-core AM5 processor with stock cooler.", "229.00", 20,
				map[string]any{"cores": 6, "threads": 12, "socket": "AM5"}), "199.00"),
		},
	},
	{
		category: models.Category{Name: "Motherboards", Slug: "motherboards", SortOrder: 3,
			Description: "Motherboards for various CPU sockets"},
		products: []models.Product{
			part("ROG Strix B650-A Gaming WiFi", "rog-strix-b650-a-gaming-wifi", "MB-ASUS-B650A", "ASUS",
				"ATX AM5 board with WiFi 6E.", "259.99", 7,
				map[string]any{"socket": "AM5", "form_factor": "ATX", "chipset": "B650"}),
			part("MAG Z790 Tomahawk WiFi", "mag-z790-tomahawk-wifi", "MB-MSI-Z790T", "MSI",
				"ATX LGA1700 board with DDR5.", "279.99", 6,
				map[string]any{"socket": "LGA1700", "form_factor": "ATX", "chipset": "Z790"}),
		},
	},
	{
		category: models.Category{Name: "Memory (RAM)", Slug: "memory-ram", SortOrder: 4,
			Description: "System memory for optimal performance"},
		products: []models.Product{
			featured(part("Vengeance DDR5 32GB (2x16GB) 6000", "vengeance-ddr5-32gb-6000", "RAM-COR-32-6000", "Corsair",
				"Dual-channel DDR5 kit, CL30.", "114.99", 30,
				map[string]any{"capacity": "32GB", "speed": "6000 MT/s", "latency": "CL30"})),
			part("Trident Z5 RGB 64GB (2x32GB) 6400", "trident-z5-rgb-64gb-6400", "RAM-GSK-64-6400", "G.Skill",
				"High-capacity DDR5 kit.", "229.99", 9,
				map[string]any{"capacity": "64GB", "speed": "6400 MT/s", "latency": "CL32"}),
		},
	},
	{
		category: models.Category{Name: "Storage (SSD/HDD)", Slug: "storage", SortOrder: 5,
			Description: "SSDs and HDDs for data storage"},
		products: []models.Product{
			featured(part("990 Pro 2TB NVMe", "990-pro-2tb-nvme", "SSD-SAM-990P-2T", "Samsung",
				"PCIe 4.0 NVMe SSD.", "179.99", 25,
				map[string]any{"capacity": "2TB", "interface": "PCIe 4.0 x4", "read": "7450 MB/s"})),
			part("Barracuda 4TB", "barracuda-4tb", "HDD-SEA-BAR-4T", "Seagate",
				"3.5in 5400 RPM desktop drive.", "84.99", 14,
				map[string]any{"capacity": "4TB", "rpm": 5400, "interface": "SATA III"}),
		},
	},
	{
		category: models.Category{Name: "Power Supplies", Slug: "power-supplies", SortOrder: 6,
			Description: "Reliable PSUs for stable power delivery"},
		products: []models.Product{
			part("RM850x", "rm850x", "PSU-COR-RM850X", "Corsair",
				"850W 80+ Gold fully modular.", "139.99", 11,
				map[string]any{"wattage": 850, "efficiency": "80+ Gold", "modular": "full"}),
			onSale(part("Focus GX-750", "focus-gx-750", "PSU-SEA-GX750", "Seasonic",
				"750W 80+ Gold fully modular.", "119.99", 0,
				map[string]any{"wattage": 750, "efficiency": "80+ Gold", "modular": "full"}), "99.99"),
		},
	},
}
