// internal/pkg/pdf/template.go
package pdf

// Receipt HTML template
const receiptTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.Order.ID}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .receipt-title {
            font-size: 28px;
            font-weight: bold;
            color: #2563eb;
            margin-bottom: 10px;
        }
        .section-title {
            font-size: 16px;
            font-weight: bold;
            margin-bottom: 10px;
            color: #374151;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .items-table th,
        .items-table td {
            border: 1px solid #ddd;
            padding: 12px 8px;
            text-align: left;
        }
        .items-table th {
            background-color: #f8f9fa;
            font-weight: bold;
        }
        .items-table .qty-col,
        .items-table .price-col,
        .items-table .total-col {
            text-align: right;
            width: 80px;
        }
        .totals {
            float: right;
            width: 300px;
        }
        .totals td {
            padding: 8px;
            border-bottom: 1px solid #eee;
        }
        .total-row {
            font-size: 18px;
            font-weight: bold;
            border-top: 2px solid #333 !important;
        }
        .status-badge {
            display: inline-block;
            padding: 4px 8px;
            border-radius: 4px;
            font-size: 12px;
            font-weight: bold;
            text-transform: uppercase;
        }
        .status-paid {
            background-color: #dcfce7;
            color: #166534;
        }
        .status-pending {
            background-color: #fef3c7;
            color: #92400e;
        }
        .footer {
            margin-top: 50px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            text-align: center;
            color: #666;
            font-size: 12px;
        }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <h1>{{.StoreName}}</h1>
        </div>
        <div style="text-align: right;">
            <div class="receipt-title">RECEIPT</div>
            <p><strong>Order #:</strong> {{.Order.ID}}</p>
            <p><strong>Date:</strong> {{.Order.CreatedAt.Format "January 2, 2006"}}</p>
            <p>
                <span class="status-badge {{if .Paid}}status-paid{{else}}status-pending{{end}}">
                    {{if .Paid}}paid{{else}}pay on delivery{{end}}
                </span>
            </p>
        </div>
    </div>

    <div style="margin-bottom: 30px;">
        <div class="section-title">Deliver To:</div>
        <p>{{.Order.Address}}</p>
        <p>Phone: {{.Order.Phone}}</p>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th>Size</th>
                <th class="qty-col">Qty</th>
                <th class="price-col">Price</th>
                <th class="total-col">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td><strong>{{.Name}}</strong></td>
                <td>{{.Size}}</td>
                <td class="qty-col">{{.Quantity}}</td>
                <td class="price-col">{{money .Price}} {{$.Currency}}</td>
                <td class="total-col">{{money .Subtotal}} {{$.Currency}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            {{if .Order.Payment}}
            <tr>
                <td>Transaction:</td>
                <td style="text-align: right;">{{.Order.Payment.TransactionID}}</td>
            </tr>
            {{end}}
            <tr class="total-row">
                <td>Total:</td>
                <td style="text-align: right;">{{money .Order.Total}} {{.Currency}}</td>
            </tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Thank you for shopping with {{.StoreName}}!</p>
    </div>
</body>
</html>
`
